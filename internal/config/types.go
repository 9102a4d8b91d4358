package config

import (
	"gopkg.in/yaml.v3"
)

// Profile represents a full lockstep hardening profile document.
type Profile struct {
	Version     string      `yaml:"version" validate:"required,semver"`
	Name        string      `yaml:"name" validate:"required,min=1,max=100"`
	Description string      `yaml:"description,omitempty"`
	Settings    Settings    `yaml:"settings,omitempty"`
	Subsystems  []Subsystem `yaml:"subsystems" validate:"required,min=1,dive"`
}

// Settings holds global run parameters.
type Settings struct {
	BackupDir string `yaml:"backup_dir,omitempty"`
	Verbose   bool   `yaml:"verbose,omitempty"`
}

// DefaultBackupDir is used when a profile does not name a backup directory.
const DefaultBackupDir = "/var/lib/lockstep/backups"

// EffectiveBackupDir returns the configured backup directory or the default.
func (s Settings) EffectiveBackupDir() string {
	if s.BackupDir != "" {
		return s.BackupDir
	}
	return DefaultBackupDir
}

// Subsystem selects one hardening subsystem and its type-specific settings.
type Subsystem struct {
	ID   string `yaml:"id" validate:"required,subsystem_id"`
	Type string `yaml:"type" validate:"required,oneof=ssh_crypto rpcbind ip_forward"`

	SSHCrypto *SSHCryptoConfig `yaml:",inline,omitempty"`
	RPCBind   *RPCBindConfig   `yaml:",inline,omitempty"`
	IPForward *IPForwardConfig `yaml:",inline,omitempty"`
}

// UnmarshalYAML customises subsystem decoding to populate the type-specific
// structure without key conflicts between types.
func (s *Subsystem) UnmarshalYAML(value *yaml.Node) error {
	type baseSubsystem struct {
		ID   string `yaml:"id"`
		Type string `yaml:"type"`
	}

	var base baseSubsystem
	if err := value.Decode(&base); err != nil {
		return err
	}

	s.ID = base.ID
	s.Type = base.Type
	s.SSHCrypto = nil
	s.RPCBind = nil
	s.IPForward = nil

	switch base.Type {
	case "ssh_crypto":
		var cfg SSHCryptoConfig
		if err := value.Decode(&cfg); err != nil {
			return err
		}
		s.SSHCrypto = &cfg
	case "rpcbind":
		var cfg RPCBindConfig
		if err := value.Decode(&cfg); err != nil {
			return err
		}
		s.RPCBind = &cfg
	case "ip_forward":
		var cfg IPForwardConfig
		if err := value.Decode(&cfg); err != nil {
			return err
		}
		s.IPForward = &cfg
	}

	return nil
}

// SSHCryptoConfig overrides the allow-lists enforced against sshd -T output.
// Empty lists fall back to the subsystem's built-in baseline.
type SSHCryptoConfig struct {
	Ciphers       []string `yaml:"ciphers,omitempty" validate:"omitempty,min=1,dive,min=1"`
	KexAlgorithms []string `yaml:"kex_algorithms,omitempty" validate:"omitempty,min=1,dive,min=1"`
	MACs          []string `yaml:"macs,omitempty" validate:"omitempty,min=1,dive,min=1"`
}

// RPCBindConfig controls the rpcbind subsystem. Purge opts in to removing the
// package entirely, which is destructive and separately gated at run time.
type RPCBindConfig struct {
	Purge bool `yaml:"purge,omitempty"`
}

// IPForwardConfig pins the IPv4 forwarding sysctl.
type IPForwardConfig struct {
	Value        string `yaml:"value,omitempty" validate:"omitempty,oneof=0 1"`
	RestoreValue string `yaml:"restore_value,omitempty" validate:"omitempty,oneof=0 1"`
}

// UnmarshalYAML applies defaults: hardening disables forwarding, backout
// restores it.
func (c *IPForwardConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig IPForwardConfig
	var temp rawConfig
	if err := value.Decode(&temp); err != nil {
		return err
	}
	*c = IPForwardConfig(temp)
	if c.Value == "" {
		c.Value = "0"
	}
	if c.RestoreValue == "" {
		c.RestoreValue = "1"
	}
	return nil
}

// SubsystemMap builds a lookup table for subsystems by ID.
func SubsystemMap(subsystems []Subsystem) map[string]Subsystem {
	out := make(map[string]Subsystem, len(subsystems))
	for _, sub := range subsystems {
		out[sub.ID] = sub
	}
	return out
}

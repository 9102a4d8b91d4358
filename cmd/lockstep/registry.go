package main

import (
	"github.com/alexisbeaulieu97/lockstep/internal/subsystem"
	"github.com/alexisbeaulieu97/lockstep/internal/subsystems/ipforward"
	"github.com/alexisbeaulieu97/lockstep/internal/subsystems/rpcbind"
	"github.com/alexisbeaulieu97/lockstep/internal/subsystems/sshcrypto"
)

var appRegistry *subsystem.Registry

func setAppRegistry(reg *subsystem.Registry) {
	appRegistry = reg
}

func registerSubsystems(reg *subsystem.Registry) error {
	for _, s := range []subsystem.Subsystem{
		sshcrypto.New(),
		rpcbind.New(),
		ipforward.New(),
	} {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	lockerrors "github.com/alexisbeaulieu97/lockstep/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern      = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	subsystemIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("subsystem_id", func(fl validator.FieldLevel) bool {
			return subsystemIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateProfile performs schema and cross-field validation on a profile.
func ValidateProfile(profile *Profile) error {
	if profile == nil {
		return lockerrors.NewValidationError("profile", "profile is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(profile); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]struct{}, len(profile.Subsystems))
	for i, sub := range profile.Subsystems {
		if _, exists := seen[sub.ID]; exists {
			return lockerrors.NewValidationError(fieldForSubsystem(i, "id"), fmt.Sprintf("duplicate subsystem id %q", sub.ID), nil)
		}
		seen[sub.ID] = struct{}{}

		if err := ValidateSubsystem(sub); err != nil {
			return err
		}
	}

	return nil
}

// ValidateSubsystem validates one subsystem entry independent of the rest of
// the profile.
func ValidateSubsystem(sub Subsystem) error {
	v := validatorInstance()
	if err := v.Struct(sub); err != nil {
		return convertValidationError(err)
	}

	switch sub.Type {
	case "ssh_crypto":
		if sub.SSHCrypto == nil {
			return lockerrors.NewValidationError(sub.ID, "ssh_crypto configuration is required", nil)
		}
		if err := v.Struct(sub.SSHCrypto); err != nil {
			return convertValidationError(err)
		}
	case "rpcbind":
		if sub.RPCBind == nil {
			return lockerrors.NewValidationError(sub.ID, "rpcbind configuration is required", nil)
		}
	case "ip_forward":
		if sub.IPForward == nil {
			return lockerrors.NewValidationError(sub.ID, "ip_forward configuration is required", nil)
		}
		if err := v.Struct(sub.IPForward); err != nil {
			return convertValidationError(err)
		}
	default:
		return lockerrors.NewValidationError(sub.ID, fmt.Sprintf("unknown subsystem type %q", sub.Type), nil)
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return lockerrors.NewValidationError(field, msg, err)
	}

	return lockerrors.NewValidationError("profile", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForSubsystem(index int, field string) string {
	return fmt.Sprintf("subsystems[%d].%s", index, field)
}

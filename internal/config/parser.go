package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	lockerrors "github.com/alexisbeaulieu97/lockstep/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseProfile loads a profile file from disk, validates it, and returns the
// resulting model.
func ParseProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lockerrors.NewParseError(path, 0, err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, lockerrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidateProfile(&profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}

package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR} and ${VAR:-default} references.
// Variable names follow shell rules: letters, digits, and underscores,
// not starting with a digit.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv replaces ${VAR} and ${VAR:-default} references in s with
// environment variable values. A variable that is unset or empty falls
// back to its default when one is given; without a default it expands
// to the empty string. A missing required value then surfaces at
// validation (e.g. the notify URL check), not as a literal ${VAR}.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, def := groups[1], groups[2]

		if val, ok := os.LookupEnv(name); ok && val != "" {
			return val
		}
		return def
	})
}

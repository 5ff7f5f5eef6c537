// Package envfile loads ideabook settings from env files.
// Variables already set in the environment take precedence.
package envfile

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/gorewood/ideabook/internal/output"
)

// Prefix is the only key prefix Load applies; other keys in a file are
// ignored so an env file cannot change unrelated process state.
const Prefix = "IDEABOOK_"

// Load reads an env file and sets every IDEABOOK_* variable that is not
// already set. It returns the keys it applied, in file order. A missing
// file is not an error.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, output.NewIOError("failed to open env file "+path, err)
	}
	defer file.Close() //nolint:errcheck // best-effort close on read-only file

	var applied []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := parseEnvLine(line)
		if !ok || !strings.HasPrefix(key, Prefix) {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return applied, output.NewSystemErrorWithCause("failed to set "+key, err)
		}
		applied = append(applied, key)
	}
	if err := scanner.Err(); err != nil {
		return applied, output.NewIOError("failed to read env file "+path, err)
	}
	return applied, nil
}

// parseEnvLine extracts KEY=VALUE from a line.
// Handles an export prefix and single or double quotes around the value.
func parseEnvLine(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))
	value = strings.TrimSpace(value)
	if key == "" {
		return "", "", false
	}

	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}

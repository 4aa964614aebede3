package config

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// loadDotEnv sets KEY=VALUE pairs from a dotenv file into the process
// environment and returns how many it applied. A missing file is not an error.
//
// Blank lines and # comments are skipped, "export " prefixes are accepted,
// quoted values keep their contents verbatim, unquoted values lose a trailing
// " #" comment, and variables already set in the environment win.
func loadDotEnv(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	applied := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := parseDotEnvLine(sc.Text())
		if !ok {
			continue
		}
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, sc.Err()
}

func parseDotEnvLine(raw string) (key, value string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(k)
	if key == "" {
		return "", "", false
	}
	value = strings.TrimSpace(v)

	if n := len(value); n >= 2 {
		if q := value[0]; (q == '"' || q == '\'') && value[n-1] == q {
			return key, value[1 : n-1], true
		}
	}
	if i := strings.Index(value, " #"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return key, value, true
}

// Package config builds child-issue settings from explicit key/value snapshots.
//
// Nothing in this package reads the process environment on its own; callers
// pass os.Environ() (or a test fixture) in, so every lookup is reproducible.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// SubstitutionPrefix marks snapshot entries that feed the placeholder mapping
const SubstitutionPrefix = "INPUT_SUBSTITUTION_"

// Snapshot is a point-in-time copy of key/value configuration entries
type Snapshot map[string]string

// FromEnviron builds a snapshot from KEY=VALUE pairs as returned by os.Environ
func FromEnviron(environ []string) Snapshot {
	snap := make(Snapshot, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		snap[key] = value
	}
	return snap
}

// Get returns the value stored under key, or ""
func (s Snapshot) Get(key string) string {
	return s[key]
}

// Lookup returns the value stored under key and whether it was present
func (s Snapshot) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Layer merges snapshots; later layers override earlier ones
func Layer(layers ...Snapshot) Snapshot {
	merged := make(Snapshot)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

// Substitutions collects the placeholder mapping from snap. Every key that
// starts with INPUT_SUBSTITUTION_ contributes one entry named by the rest of
// the key.
func Substitutions(snap Snapshot) map[string]string {
	subs := make(map[string]string)
	for key, value := range snap {
		name, ok := strings.CutPrefix(key, SubstitutionPrefix)
		if !ok || name == "" {
			continue
		}
		subs[name] = value
	}
	return subs
}

// ReadDotEnv reads a dotenv file into a snapshot. A missing file yields an
// empty snapshot. Hyphenated input names may be written with underscores,
// e.g. INPUT_GITHUB_TOKEN for INPUT_GITHUB-TOKEN.
func ReadDotEnv(path string) (Snapshot, error) {
	if path == "" {
		return Snapshot{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Snapshot{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}

	// dotenv names cannot contain '-', so hyphenated inputs are spelled with '_'.
	// An alias inside the substitution namespace stays a substitution.
	for _, key := range hyphenatedKeys {
		alias := strings.ReplaceAll(key, "-", "_")
		if strings.HasPrefix(alias, SubstitutionPrefix) {
			continue
		}
		if v, ok := values[alias]; ok {
			delete(values, alias)
			values[key] = v
		}
	}
	return Snapshot(values), nil
}

var hyphenatedKeys = []string{
	KeyToken,
	KeyTemplateDir,
	KeySubstitutionMode,
	KeyAPIURL,
	KeyDryRun,
	KeyLogLevel,
	KeyLogFormat,
}

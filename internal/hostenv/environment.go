package hostenv

import (
	"os"
	"sort"
	"strings"
)

// Environment exposes environment variables to the execution subsystem.
type Environment interface {
	Lookup(key string) (string, bool)
	Entries() []string
}

// OSEnvironment reads the live process environment.
type OSEnvironment struct{}

// Lookup implements Environment using os.LookupEnv.
func (OSEnvironment) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Entries implements Environment using os.Environ.
func (OSEnvironment) Entries() []string {
	return os.Environ()
}

// MapEnvironment is a synthetic environment used to describe hosts other than the running one.
// Lookups fall back to a case-insensitive match, mirroring Windows semantics.
type MapEnvironment map[string]string

// Lookup implements Environment.
func (environment MapEnvironment) Lookup(key string) (string, bool) {
	if value, exists := environment[key]; exists {
		return value, true
	}
	for candidateKey, value := range environment {
		if strings.EqualFold(candidateKey, key) {
			return value, true
		}
	}
	return "", false
}

// Entries implements Environment with keys in lexical order.
func (environment MapEnvironment) Entries() []string {
	keys := make([]string, 0, len(environment))
	for key := range environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]string, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, key+environmentAssignmentSeparatorConstant+environment[key])
	}
	return entries
}

package flag

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// seedDocument is the YAML shape of a seed file: a top-level "flags" list.
type seedDocument struct {
	Flags []*Flag `yaml:"flags"`
}

// ParseSeed decodes a YAML seed document of flag records and validates each
// one. Seed files let a deployment bootstrap its default flags before any
// mutation API traffic arrives.
func ParseSeed(r io.Reader) ([]*Flag, error) {
	var doc seedDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Join(ErrInvalidSeed, err)
	}
	for _, f := range doc.Flags {
		if err := f.Validate(); err != nil {
			return nil, errors.Join(ErrInvalidSeed, err)
		}
	}
	return doc.Flags, nil
}

// LoadSeedFile reads and parses a YAML seed file from disk.
func LoadSeedFile(path string) ([]*Flag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidSeed, err)
	}
	defer f.Close()
	return ParseSeed(f)
}

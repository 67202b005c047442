package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"github.com/joho/godotenv"
)

// Environ looks up environment variables.
type Environ interface {
	Lookup(name string) (string, bool)
}

// OSEnviron reads from the process environment.
type OSEnviron struct{}

func (OSEnviron) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapEnviron is a fixed set of variables.
type MapEnviron map[string]string

func (m MapEnviron) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

type layered []Environ

// Layered consults envs in order; the first one that defines a name wins.
func Layered(envs ...Environ) Environ {
	return layered(envs)
}

func (l layered) Lookup(name string) (string, bool) {
	for _, env := range l {
		if env == nil {
			continue
		}
		if v, ok := env.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

// LoadDotenv reads dotenv files in order, later files overriding earlier ones.
// Missing files are skipped.
func LoadDotenv(paths ...string) (MapEnviron, error) {
	merged := MapEnviron{}
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		maps.Copy(merged, values)
	}
	return merged, nil
}

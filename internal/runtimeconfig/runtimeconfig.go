package runtimeconfig

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/eugenenazirov/runtimecfg/internal/definition"
)

const (
	overridePrefix       = "NUXT_"
	publicOverridePrefix = "NUXT_PUBLIC_"
)

// RuntimeConfig holds resolved settings. Accessors return copies.
type RuntimeConfig struct {
	public  map[string]string
	private map[string]string
	missing []string
}

// Resolve validates def and reads every declared field from env. A field is
// taken from its bound variable unless its override variable (see
// OverrideName) is set. Absent variables resolve to the empty string and are
// reported by Missing.
func Resolve(def definition.Definition, env Environ) (*RuntimeConfig, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validate definition: %w", err)
	}
	if env == nil {
		env = MapEnviron(nil)
	}

	rc := &RuntimeConfig{
		public:  make(map[string]string),
		private: make(map[string]string),
	}
	for _, f := range def.Fields {
		value, _ := env.Lookup(f.Env)
		if override, ok := env.Lookup(OverrideName(f)); ok {
			value = override
		}
		if value == "" {
			rc.missing = append(rc.missing, f.Key)
		}

		switch f.Visibility {
		case definition.Public:
			rc.public[f.Key] = value
		case definition.Private:
			rc.private[f.Key] = value
		}
	}
	slices.Sort(rc.missing)

	return rc, nil
}

// OverrideName returns the variable that overrides a field regardless of its
// binding: NUXT_PUBLIC_<KEY> for public fields, NUXT_<KEY> for private ones,
// with the key in upper snake case.
func OverrideName(f definition.Field) string {
	prefix := overridePrefix
	if f.Visibility == definition.Public {
		prefix = publicOverridePrefix
	}
	return prefix + UpperSnake(f.Key)
}

// UpperSnake converts a camelCase key to UPPER_SNAKE_CASE.
func UpperSnake(key string) string {
	runes := []rune(key)
	var b strings.Builder
	b.Grow(len(runes) + 4)

	for i, r := range runes {
		if r == '-' || r == '.' || r == ' ' {
			b.WriteByte('_')
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Public returns the client-visible settings.
func (c *RuntimeConfig) Public() map[string]string {
	return maps.Clone(c.public)
}

// Private returns the server-only settings.
func (c *RuntimeConfig) Private() map[string]string {
	return maps.Clone(c.private)
}

// Get returns the value of key from either section.
func (c *RuntimeConfig) Get(key string) (string, bool) {
	if v, ok := c.public[key]; ok {
		return v, true
	}
	v, ok := c.private[key]
	return v, ok
}

// IsPublic reports whether key belongs to the public section.
func (c *RuntimeConfig) IsPublic(key string) bool {
	_, ok := c.public[key]
	return ok
}

// PrivateKeys returns the sorted names of the server-only settings.
func (c *RuntimeConfig) PrivateKeys() []string {
	return slices.Sorted(maps.Keys(c.private))
}

// Missing returns the sorted keys that resolved to an empty value.
func (c *RuntimeConfig) Missing() []string {
	return slices.Clone(c.missing)
}

// Equal reports whether both configs hold the same settings.
func (c *RuntimeConfig) Equal(other *RuntimeConfig) bool {
	if c == nil || other == nil {
		return c == other
	}
	return maps.Equal(c.public, other.public) &&
		maps.Equal(c.private, other.private) &&
		slices.Equal(c.missing, other.missing)
}

// MarshalJSON encodes the public section only.
func (c *RuntimeConfig) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.public)
}

package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	PresetStandard = "standard"
	PresetNoAuth   = "no-auth"
)

var baseModules = []string{
	"@nuxt/eslint",
	"@nuxt/icon",
	"@nuxt/ui",
	"@nuxtjs/tailwindcss",
	"@nuxt/fonts",
}

// Standard returns the definition with the auth module enabled and the
// client secret kept server-only.
func Standard() Definition {
	modules := slices.Clone(baseModules)
	modules = slices.Insert(modules, 4, AuthModule)

	return Definition{
		CompatibilityDate: "2024-11-01",
		Modules:           modules,
		Devtools:          true,
		Auth: &AuthOptions{
			RedirectOptions: RedirectOptions{
				Login:    "/",
				Callback: "/confirm",
				Exclude:  []string{},
			},
		},
		Fields: []Field{
			{Key: "supabaseUrl", Env: "SUPABASE_URL", Visibility: Public},
			{Key: "supabaseKey", Env: "SUPABASE_KEY", Visibility: Public},
			{Key: "spotifyClientId", Env: "SPOTIFY_CLIENT_ID", Visibility: Public},
			{Key: "spotifyClientSecret", Env: "SPOTIFY_CLIENT_SECRET", Visibility: Private},
		},
	}
}

// WithoutAuth returns the definition with the auth module disabled and no
// runtime settings declared.
func WithoutAuth() Definition {
	return Definition{
		CompatibilityDate: "2024-11-01",
		Modules:           slices.Clone(baseModules),
		Devtools:          true,
	}
}

// Preset returns a built-in definition by name.
func Preset(name string) (Definition, error) {
	switch strings.TrimSpace(name) {
	case PresetStandard:
		return Standard(), nil
	case PresetNoAuth:
		return WithoutAuth(), nil
	default:
		return Definition{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
}

// Presets lists the built-in preset names.
func Presets() []string {
	return []string{PresetStandard, PresetNoAuth}
}

// AuthEnabled reports whether the auth module is among the enabled modules.
func (d Definition) AuthEnabled() bool {
	return slices.Contains(d.Modules, AuthModule)
}

// PublicFields returns the fields exposed to clients, in declaration order.
func (d Definition) PublicFields() []Field {
	return d.fieldsWith(Public)
}

// PrivateFields returns the server-only fields, in declaration order.
func (d Definition) PrivateFields() []Field {
	return d.fieldsWith(Private)
}

func (d Definition) fieldsWith(v Visibility) []Field {
	out := make([]Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.Visibility == v {
			out = append(out, f)
		}
	}
	return out
}

// Guards reports whether requests to p are subject to the redirect policy.
// The login and callback routes and any excluded pattern are exempt. Both the
// request path and the configured routes are compared in cleaned form.
func (r RedirectOptions) Guards(p string) bool {
	p = cleanRoute(p)

	if p == cleanRoute(r.Login) || p == cleanRoute(r.Callback) {
		return false
	}
	for _, pattern := range r.Exclude {
		if matched, err := path.Match(cleanRoute(pattern), p); err == nil && matched {
			return false
		}
	}
	return true
}

func cleanRoute(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// fileDefinition mirrors the YAML layout of a definition file.
type fileDefinition struct {
	CompatibilityDate string       `yaml:"compatibilityDate"`
	Modules           []string     `yaml:"modules"`
	Devtools          fileDevtools `yaml:"devtools"`
	Supabase          *AuthOptions `yaml:"supabase"`
	RuntimeConfig     fileRuntime  `yaml:"runtimeConfig"`
}

type fileDevtools struct {
	Enabled bool `yaml:"enabled"`
}

type fileRuntime struct {
	Public  map[string]string `yaml:"public"`
	Private map[string]string `yaml:"private"`
}

// Parse decodes a YAML definition. Unknown keys are rejected. Fields are
// ordered by key within each section, public first.
func Parse(data []byte) (Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw fileDefinition
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Definition{}, fmt.Errorf("%w: parse YAML: %v", ErrInvalidDefinition, err)
	}

	def := Definition{
		CompatibilityDate: raw.CompatibilityDate,
		Modules:           raw.Modules,
		Devtools:          raw.Devtools.Enabled,
		Auth:              raw.Supabase,
	}
	def.Fields = append(def.Fields, sectionFields(raw.RuntimeConfig.Public, Public)...)
	def.Fields = append(def.Fields, sectionFields(raw.RuntimeConfig.Private, Private)...)

	if def.Auth != nil && def.Auth.RedirectOptions.Exclude == nil {
		def.Auth.RedirectOptions.Exclude = []string{}
	}
	return def, nil
}

// LoadFile reads and parses a YAML definition file.
func LoadFile(filename string) (Definition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Definition{}, fmt.Errorf("read definition: %w", err)
	}
	return Parse(data)
}

func sectionFields(section map[string]string, v Visibility) []Field {
	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Env: section[k], Visibility: v})
	}
	return fields
}

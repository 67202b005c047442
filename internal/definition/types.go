package definition

// AuthModule is the framework extension that enforces the redirect policy.
const AuthModule = "@nuxtjs/supabase"

// Visibility controls whether a runtime setting is shipped to clients.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// Field binds a runtime setting key to the environment variable it is read from.
type Field struct {
	Key        string     `json:"key" validate:"required"`
	Env        string     `json:"env" validate:"required"`
	Visibility Visibility `json:"visibility" validate:"oneof=public private"`
}

// RedirectOptions declares the routes used by the auth redirect policy.
// Exclude entries are path.Match patterns.
type RedirectOptions struct {
	Login    string   `yaml:"login" json:"login" validate:"required,startswith=/"`
	Callback string   `yaml:"callback" json:"callback" validate:"required,startswith=/"`
	Exclude  []string `yaml:"exclude" json:"exclude" validate:"dive,required,startswith=/"`
}

// AuthOptions is the settings block of the auth module.
type AuthOptions struct {
	RedirectOptions RedirectOptions `yaml:"redirectOptions" json:"redirectOptions"`
}

// Definition is the declarative application definition.
type Definition struct {
	CompatibilityDate string       `json:"compatibilityDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Modules           []string     `json:"modules" validate:"min=1,unique,dive,required"`
	Devtools          bool         `json:"devtools"`
	Auth              *AuthOptions `json:"auth,omitempty" validate:"-"`
	Fields            []Field      `json:"fields" validate:"dive"`
}

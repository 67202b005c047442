package definition

import "errors"

var (
	// ErrInvalidDefinition indicates a structurally malformed definition.
	ErrInvalidDefinition = errors.New("invalid definition")
	// ErrSecretExposed indicates a secret-bearing field placed in the public section.
	ErrSecretExposed = errors.New("secret field must not be public")
	// ErrInvalidRedirect indicates malformed auth redirect options.
	ErrInvalidRedirect = errors.New("invalid redirect options")
	// ErrUnknownPreset is returned by Preset for unregistered names.
	ErrUnknownPreset = errors.New("unknown preset")
)

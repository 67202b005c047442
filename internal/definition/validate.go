package definition

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the definition. A field whose key names a secret must be
// private. Redirect options are only checked when the auth module is enabled.
func (d Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDefinition, describe(err))
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidDefinition, f.Key)
		}
		seen[f.Key] = struct{}{}

		if IsSecret(f.Key) && f.Visibility != Private {
			return fmt.Errorf("%w: %q", ErrSecretExposed, f.Key)
		}
	}

	if !d.AuthEnabled() {
		return nil
	}
	if d.Auth == nil {
		return fmt.Errorf("%w: %s is enabled but no redirect options are set", ErrInvalidRedirect, AuthModule)
	}
	return d.Auth.RedirectOptions.Validate()
}

// Validate checks that login and callback are absolute paths and every
// exclude entry is a well-formed absolute pattern.
func (r RedirectOptions) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRedirect, describe(err))
	}
	for _, pattern := range r.Exclude {
		if _, err := path.Match(pattern, "/"); err != nil {
			return fmt.Errorf("%w: exclude pattern %q: %v", ErrInvalidRedirect, pattern, err)
		}
	}
	return nil
}

// IsSecret reports whether a setting key names a secret value.
func IsSecret(key string) bool {
	return strings.Contains(strings.ToLower(key), "secret")
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// Package config loads the service's own settings from multiple sources (YAML
// files, environment variables, CLI flags) with precedence: CLI flags > YAML
// config > Environment variables > Defaults. It also selects where the
// application definition comes from and which dotenv files feed it.
package config

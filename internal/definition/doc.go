// Package definition describes the declarative application definition: the
// enabled framework modules, the auth redirect policy and the schema of runtime
// settings with their environment bindings and visibility. Definitions come
// from built-in presets or YAML files and are checked by Validate before use.
package definition

// Package runtimeconfig resolves an application definition against the process
// environment. The result is split into a public section, safe to embed in
// anything delivered to clients, and a private section that stays on the
// server. A resolved RuntimeConfig is read-only.
package runtimeconfig

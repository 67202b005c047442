// Package application provides application initialization and dependency wiring.
// It loads the application definition, resolves it against dotenv files and the
// process environment, and builds the HTTP router and server, keeping the main
// package focused on CLI parsing and orchestration.
package application

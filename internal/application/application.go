package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/runtimecfg/internal/api"
	"github.com/eugenenazirov/runtimecfg/internal/config"
	"github.com/eugenenazirov/runtimecfg/internal/definition"
	"github.com/eugenenazirov/runtimecfg/internal/runtimeconfig"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	definition definition.Definition
	runtime    *runtimeconfig.RuntimeConfig
	handler    *api.Handler
	router     http.Handler
	logger     *zap.Logger
	server     *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	def, rc, err := LoadRuntime(cfg, runtimeconfig.OSEnviron{})
	if err != nil {
		return nil, err
	}

	logger.Info("runtime configuration resolved",
		zap.Strings("modules", def.Modules),
		zap.Bool("auth_enabled", def.AuthEnabled()),
		zap.Int("public_keys", len(rc.Public())),
		zap.Int("private_keys", len(rc.PrivateKeys())),
	)
	for _, key := range rc.Missing() {
		logger.Warn("runtime setting is empty", zap.String("key", key))
	}

	handler := api.NewHandler(def, rc)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		definition: def,
		runtime:    rc,
		handler:    handler,
		router:     apiRouter,
		logger:     logger,
		server:     NewServer(cfg, apiRouter),
	}, nil
}

// LoadDefinition returns the definition selected by cfg: the definition file
// when set, otherwise the named preset.
func LoadDefinition(cfg config.Config) (definition.Definition, error) {
	if cfg.DefinitionFile != "" {
		def, err := definition.LoadFile(cfg.DefinitionFile)
		if err != nil {
			return definition.Definition{}, fmt.Errorf("load definition %s: %w", cfg.DefinitionFile, err)
		}
		return def, nil
	}
	return definition.Preset(cfg.Preset)
}

// LoadRuntime loads the definition and resolves it against env layered over
// the dotenv files named in cfg. Values in env win over dotenv values.
func LoadRuntime(cfg config.Config, env runtimeconfig.Environ) (definition.Definition, *runtimeconfig.RuntimeConfig, error) {
	def, err := LoadDefinition(cfg)
	if err != nil {
		return definition.Definition{}, nil, err
	}

	dotenv, err := runtimeconfig.LoadDotenv(cfg.EnvFiles...)
	if err != nil {
		return definition.Definition{}, nil, fmt.Errorf("load env files: %w", err)
	}

	rc, err := runtimeconfig.Resolve(def, runtimeconfig.Layered(env, dotenv))
	if err != nil {
		return definition.Definition{}, nil, fmt.Errorf("resolve runtime config: %w", err)
	}
	return def, rc, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Runtime returns the resolved runtime configuration.
func (a *App) Runtime() *runtimeconfig.RuntimeConfig {
	return a.runtime
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/runtimecfg/internal/application"
	"github.com/eugenenazirov/runtimecfg/internal/config"
	"github.com/eugenenazirov/runtimecfg/internal/logging"
	"github.com/eugenenazirov/runtimecfg/internal/runtimeconfig"
)

var signalNotify = signal.Notify

const redactedValue = "<redacted>"

func main() {
	kingpinApp := kingpin.New("runtimecfg", "Runtime configuration loader - resolves application settings from the environment and serves the public section")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	preset := kingpinApp.Flag("preset", "Built-in application definition (standard, no-auth)").String()
	definitionFile := kingpinApp.Flag("definition", "Path to YAML application definition").String()
	envFiles := kingpinApp.Flag("env-file", "Dotenv file to read (repeatable)").Strings()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	serveCmd := kingpinApp.Command("serve", "Serve the public runtime configuration over HTTP").Default()
	printCmd := kingpinApp.Command("print", "Print the resolved configuration with private values redacted")
	checkCmd := kingpinApp.Command("check", "Validate the application definition and report empty settings")

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		EnvFiles:   *envFiles,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *preset != "" {
		overrides.Preset = preset
	}

	if *definitionFile != "" {
		overrides.DefinitionFile = definitionFile
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		kingpinApp.Fatalf("failed to load configuration: %v", err)
	}

	switch command {
	case printCmd.FullCommand():
		if err := runPrint(os.Stdout, cfg, runtimeconfig.OSEnviron{}); err != nil {
			kingpinApp.Fatalf("%v", err)
		}
	case checkCmd.FullCommand():
		if err := runCheck(os.Stdout, cfg, runtimeconfig.OSEnviron{}); err != nil {
			kingpinApp.Fatalf("%v", err)
		}
	case serveCmd.FullCommand():
		serve(cfg)
	}
}

func serve(cfg config.Config) {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

type printOutput struct {
	Public  map[string]string `json:"public"`
	Private map[string]string `json:"private"`
	Missing []string          `json:"missing,omitempty"`
}

// runPrint writes the resolved configuration as JSON. Private values are
// replaced by a marker, or left empty when unset.
func runPrint(w io.Writer, cfg config.Config, env runtimeconfig.Environ) error {
	_, rc, err := application.LoadRuntime(cfg, env)
	if err != nil {
		return err
	}

	private := rc.Private()
	for key, value := range private {
		if value != "" {
			private[key] = redactedValue
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(printOutput{
		Public:  rc.Public(),
		Private: private,
		Missing: rc.Missing(),
	})
}

// runCheck validates the definition and lists settings that resolved empty.
// Empty settings are reported but are not an error.
func runCheck(w io.Writer, cfg config.Config, env runtimeconfig.Environ) error {
	def, rc, err := application.LoadRuntime(cfg, env)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Fprintf(w, "definition ok: %d modules, auth enabled: %t\n", len(def.Modules), def.AuthEnabled())
	fmt.Fprintf(w, "settings: %d public, %d private\n", len(def.PublicFields()), len(def.PrivateFields()))
	for _, key := range rc.Missing() {
		fmt.Fprintf(w, "warning: %s is empty\n", key)
	}
	return nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/eugenenazirov/runtimecfg/internal/config"
	"github.com/eugenenazirov/runtimecfg/internal/runtimeconfig"
)

func standardConfig() config.Config {
	return config.Config{Port: "0", LogLevel: "info", Preset: "standard"}
}

func TestRunPrintRedactsPrivateValues(t *testing.T) {
	env := runtimeconfig.MapEnviron{
		"SUPABASE_URL":          "https://x.test",
		"SUPABASE_KEY":          "abc",
		"SPOTIFY_CLIENT_SECRET": "secret1",
	}

	var buf bytes.Buffer
	if err := runPrint(&buf, standardConfig(), env); err != nil {
		t.Fatalf("runPrint returned error: %v", err)
	}
	if strings.Contains(buf.String(), "secret1") {
		t.Fatalf("private value leaked: %s", buf.String())
	}

	var out printOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Public["supabaseUrl"] != "https://x.test" {
		t.Fatalf("unexpected public section: %v", out.Public)
	}
	if out.Private["spotifyClientSecret"] != redactedValue {
		t.Fatalf("expected redacted secret, got %q", out.Private["spotifyClientSecret"])
	}
	if len(out.Missing) != 1 || out.Missing[0] != "spotifyClientId" {
		t.Fatalf("expected spotifyClientId to be missing, got %v", out.Missing)
	}
}

func TestRunCheck(t *testing.T) {
	t.Run("reports empty settings", func(t *testing.T) {
		var buf bytes.Buffer
		if err := runCheck(&buf, standardConfig(), runtimeconfig.MapEnviron{}); err != nil {
			t.Fatalf("runCheck returned error: %v", err)
		}
		if !strings.Contains(buf.String(), "auth enabled: true") {
			t.Fatalf("expected auth summary, got %s", buf.String())
		}
		if !strings.Contains(buf.String(), "warning: spotifyClientSecret is empty") {
			t.Fatalf("expected missing secret warning, got %s", buf.String())
		}
	})

	t.Run("fails on unknown preset", func(t *testing.T) {
		cfg := standardConfig()
		cfg.Preset = "legacy"

		var buf bytes.Buffer
		if err := runCheck(&buf, cfg, runtimeconfig.MapEnviron{}); err == nil {
			t.Fatalf("expected error for unknown preset")
		}
	})
}

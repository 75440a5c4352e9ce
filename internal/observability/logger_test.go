package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/MichaelGalo/sushi-train/internal/config"
)

func TestNewLoggerEmitsJSONWithServiceAttrs(t *testing.T) {
	cfg := config.Config{
		Profile:       config.ProfileTest,
		Service:       config.ServiceConfig{Name: "sushi-train"},
		Observability: config.ObservabilityConfig{LogLevel: slog.LevelInfo, LogJSON: true},
	}

	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)
	logger.Info("lake attached", slog.String("alias", "my_ducklake"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log record: %v", err)
	}
	if record["service"] != "sushi-train" {
		t.Fatalf("service attr = %v", record["service"])
	}
	if record["profile"] != "test" {
		t.Fatalf("profile attr = %v", record["profile"])
	}
	if record["alias"] != "my_ducklake" {
		t.Fatalf("alias attr = %v", record["alias"])
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	cfg := config.Config{
		Service:       config.ServiceConfig{Name: "sushi-train"},
		Observability: config.ObservabilityConfig{LogLevel: slog.LevelWarn, LogJSON: false},
	}

	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)
	logger.Info("suppressed")
	logger.Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatal("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "emitted") {
		t.Fatal("warn record should be emitted")
	}
}

package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/valpere/xmlmessage/internal/logging"
)

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelWarn, Format: logging.FormatText, Output: &buf})

	log.Info("hidden")
	log.Warn("shown", "tag", "blog-link")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "tag=blog-link") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON, Output: &buf})

	log.Debug("parsed", "nodes", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "parsed" || rec["nodes"] != float64(3) {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestNop(t *testing.T) {
	logging.Nop().Error("dropped")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]logging.Level{
		"debug":   logging.LevelDebug,
		"INFO":    logging.LevelInfo,
		"warning": logging.LevelWarn,
		"error":   logging.LevelError,
		"":        logging.LevelWarn,
		"bogus":   logging.LevelWarn,
	}
	for in, want := range tests {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if logging.ParseFormat("JSON") != logging.FormatJSON {
		t.Error("expected json format")
	}
	if logging.ParseFormat("yaml") != logging.FormatText {
		t.Error("expected text fallback")
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestInfoCFWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	Init("debug", &buf)
	t.Cleanup(func() { Init("info", os.Stderr) })

	InfoCF("chat", "message sent", map[string]any{"session": "abc"})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if line["component"] != "chat" || line["session"] != "abc" || line["message"] != "message sent" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["level"] != "info" {
		t.Fatalf("unexpected level %v", line["level"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	Init("warn", &buf)
	t.Cleanup(func() { Init("info", os.Stderr) })

	DebugCF("chat", "noise", nil)
	InfoCF("chat", "noise", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	ErrorCF("chat", "boom", nil)
	if buf.Len() == 0 {
		t.Fatal("expected error line")
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init("chatty", &buf)
	t.Cleanup(func() { Init("info", os.Stderr) })

	DebugCF("x", "hidden", nil)
	InfoCF("x", "shown", nil)
	if !bytes.Contains(buf.Bytes(), []byte("shown")) || bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

// startLevel is read before any test calls Init.
var startLevel = base.GetLevel()

func TestDefaultLoggerSkipsDebug(t *testing.T) {
	if startLevel != zerolog.InfoLevel {
		t.Fatalf("default level must be info, got %s", startLevel)
	}
}

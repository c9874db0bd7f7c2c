package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Level{
		"debug": log.DebugLevel,
		"WARN":  log.WarnLevel,
		"error": log.ErrorLevel,
		"":      log.InfoLevel,
		"loud":  log.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInfo_WritesFormattedMessage(t *testing.T) {
	var buf bytes.Buffer
	logger.Store(newLogger(&buf, "test", log.InfoLevel))

	Info("[Room %s] Created", "0421")
	Debug("hidden %d", 1)

	out := buf.String()
	if !strings.Contains(out, "[Room 0421] Created") {
		t.Fatalf("expected message in output, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
}

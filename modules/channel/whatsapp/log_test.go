package whatsapp

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	l := newWALogger(base).Sub("Client")

	l.Infof("paired as %s", "628111")
	l.Debugf("hidden %d", 1)
	l.Errorf("socket %s", "closed")

	out := buf.String()
	for _, want := range []string{"paired as 628111", "wa_module=Client", "level=ERROR", "socket closed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line emitted at info level:\n%s", out)
	}
}

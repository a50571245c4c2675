package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		env       string
		json      bool
		debugSeen bool
	}{
		{"prod", true, false},
		{"staging", true, true},
		{"dev", false, true},
		{"unknown", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := Setup(tt.env, &buf)

			log.Debug("debug line")
			log.Info("info line", slog.String("k", "v"))

			out := buf.String()
			if strings.Contains(out, "debug line") != tt.debugSeen {
				t.Errorf("debug visible = %v, want %v", !tt.debugSeen, tt.debugSeen)
			}

			lines := strings.Split(strings.TrimSpace(out), "\n")
			last := lines[len(lines)-1]
			var m map[string]any
			isJSON := json.Unmarshal([]byte(last), &m) == nil
			if isJSON != tt.json {
				t.Errorf("json output = %v, want %v: %q", isJSON, tt.json, last)
			}

			if slog.Default() != log {
				t.Error("Setup should install the logger as default")
			}
		})
	}
}

package rendergraph

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// captureLogs installs a JSON logger for the duration of the test.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})))
	return &buf
}

// records decodes one JSON object per logged line.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, rec)
	}
	return out
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
}

func TestLoggedFailures(t *testing.T) {
	tests := []struct {
		name  string
		run   func(g *RenderGraph)
		level string
		msg   string
	}{
		{
			name:  "compile without passes",
			run:   func(g *RenderGraph) { _ = g.Compile() },
			level: "ERROR",
			msg:   "rendergraph: compile failed: no passes",
		},
		{
			name:  "execute before compile",
			run:   func(g *RenderGraph) { _ = g.Execute(&fakeRecorder{}) },
			level: "ERROR",
			msg:   "rendergraph: execute called before compile",
		},
		{
			name: "invalid handle",
			run: func(g *RenderGraph) {
				g.AddPass("Main", func(b *PassBuilder) { b.SampleTexture(TextureHandle{}) }, nil)
			},
			level: "WARN",
			msg:   "rendergraph: access ignored",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t, slog.LevelWarn)
			tt.run(New(newFakeDevice(), WithLabel("frame")))

			recs := records(t, buf)
			if len(recs) == 0 {
				t.Fatal("nothing logged")
			}
			rec := recs[0]
			if rec["level"] != tt.level || rec["msg"] != tt.msg {
				t.Errorf("logged %v %q, want %s %q", rec["level"], rec["msg"], tt.level, tt.msg)
			}
		})
	}
}

func TestCompileSummaryAtInfo(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	g := New(newFakeDevice())
	g.AddPass("Main", func(b *PassBuilder) {
		b.CreateColorAttachment("Color", 4, 4, DefaultColorFormat)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"passes":1`) {
		t.Errorf("compile summary missing pass count: %s", buf.String())
	}
	if strings.Contains(buf.String(), `"level":"DEBUG"`) {
		t.Error("debug records leaked past an info handler")
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) stored nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) left an enabled logger")
	}
}

func TestLoggerSwappedDuringCompile(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			g := New(newFakeDevice())
			g.AddPass("Main", func(b *PassBuilder) {
				b.CreateColorAttachment("Color", 4, 4, DefaultColorFormat)
			}, nil)
			if err := g.Compile(); err != nil {
				t.Errorf("Compile failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			SetLogger(nil)
		}()
	}
	wg.Wait()
}

func BenchmarkLoggerDisabledLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("rendergraph: barrier", "pass", "Main", "resource", "Color")
	}
}

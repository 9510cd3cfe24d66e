package profiler

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

func TestProfilerReportsPerInterval(t *testing.T) {
	var buf bytes.Buffer
	now := time.Unix(0, 0)
	p := NewProfiler(
		WithLabel("animation"),
		WithLogger(log.New(&buf, "", 0)),
		WithInterval(time.Second),
		withClock(func() time.Time { return now }),
	)

	for range 9 {
		now = now.Add(100 * time.Millisecond)
		if p.Tick() {
			t.Fatal("reported before the interval elapsed")
		}
	}
	now = now.Add(100 * time.Millisecond)
	if !p.Tick() {
		t.Fatal("no report after the interval")
	}

	out := buf.String()
	if !strings.Contains(out, "[animation]") || !strings.Contains(out, "Updates/s: 10.00") {
		t.Errorf("report: %q", out)
	}
}

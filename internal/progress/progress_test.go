package progress

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	var rows atomic.Int64
	p := New(&rows, nil, false)

	if p.rows != &rows {
		t.Error("rows counter not assigned")
	}
	if p.quiet {
		t.Error("quiet should be false")
	}
}

func TestProgress_QuietMode(t *testing.T) {
	var rows atomic.Int64
	p := New(&rows, nil, true)

	// Start and stop should not panic in quiet mode
	p.Start()
	time.Sleep(10 * time.Millisecond)
	p.Stop()
}

func TestProgress_DoubleStop(t *testing.T) {
	var rows atomic.Int64
	p := New(&rows, nil, true)
	p.Start()

	// Double stop should not panic
	p.Stop()
	p.Stop()
}

func TestProgress_StopWithoutStart(t *testing.T) {
	var rows atomic.Int64
	p := New(&rows, nil, false)

	// Stop without start should not panic
	p.Stop()
}

func TestProgress_PrintProgress(t *testing.T) {
	var rows atomic.Int64
	rows.Store(120)

	var buf bytes.Buffer
	p := New(&rows, func() int { return 4 }, false)
	p.SetOutput(&buf)
	p.startTime = time.Now().Add(-2 * time.Second)

	p.printProgress()

	output := buf.String()
	if !strings.Contains(output, "\033[K") {
		t.Error("expected output to contain line clear escape sequence")
	}
	if !strings.Contains(output, "Sensors: 4") {
		t.Errorf("expected sensor count, got: %q", output)
	}
	if !strings.Contains(output, "Rows: 120") {
		t.Errorf("expected row count, got: %q", output)
	}
}

func TestProgress_Printf(t *testing.T) {
	var rows atomic.Int64
	var buf bytes.Buffer
	p := New(&rows, nil, false)
	p.SetOutput(&buf)

	p.Printf("sensor %s started (interval: %s)", "TR10B-01", "30s")

	if !strings.Contains(buf.String(), "sensor TR10B-01 started (interval: 30s)\n") {
		t.Errorf("expected formatted message, got: %q", buf.String())
	}
}

func TestProgress_Printf_QuietModeDoesNotPrint(t *testing.T) {
	var rows atomic.Int64
	var buf bytes.Buffer
	p := New(&rows, nil, true)
	p.SetOutput(&buf)

	p.Printf("sensor started")

	if buf.String() != "" {
		t.Errorf("expected no output in quiet mode, got: %q", buf.String())
	}
}

func TestProgress_SetOutput(t *testing.T) {
	var rows atomic.Int64
	var buf1, buf2 bytes.Buffer
	p := New(&rows, nil, false)

	p.SetOutput(&buf1)
	p.Printf("message1")

	p.SetOutput(&buf2)
	p.Printf("message2")

	if !strings.Contains(buf1.String(), "message1") {
		t.Error("expected message1 in buf1")
	}
	if !strings.Contains(buf2.String(), "message2") {
		t.Error("expected message2 in buf2")
	}
	if strings.Contains(buf1.String(), "message2") {
		t.Error("buf1 should not contain message2")
	}
}

package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLog_Toggle(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetEnabled(false)

	SetEnabled(false)
	Log("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("disabled logger wrote %q", buf.String())
	}

	SetEnabled(true)
	Log("grid %dx%d", 3, 4)
	LogIf(false, "skipped")
	LogIf(true, "shown")
	Section("render")
	LogEnterExit("work")()

	out := buf.String()
	for _, want := range []string{"grid 3x4", "shown", "=== render ===", "-> work", "<- work"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Errorf("LogIf(false) wrote output:\n%s", out)
	}
	if !strings.HasPrefix(out, prefix) {
		t.Errorf("missing prefix in %q", out)
	}
}

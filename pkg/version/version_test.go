package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	for _, key := range []string{"version", "buildTime", "gitCommit", "goVersion"} {
		if info[key] == "" {
			t.Errorf("Info()[%q] is empty", key)
		}
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "kernelbus "+Version) {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, GoVersion) {
		t.Errorf("String() = %q, missing Go version", s)
	}
}

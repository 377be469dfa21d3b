package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogFilePathUsesConfiguredDir(t *testing.T) {
	tmpDir := t.TempDir()

	got, err := resolveLogFilePath(Options{Dir: tmpDir, Filename: "api.log"})
	if err != nil {
		t.Fatalf("resolve log path failed: %v", err)
	}
	if got != filepath.Join(tmpDir, "api.log") {
		t.Fatalf("log path want %s got %s", filepath.Join(tmpDir, "api.log"), got)
	}
	// The file must be creatable up front so startup fails loudly, not at
	// first write.
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("log file not pre-created: %v", err)
	}
}

func TestResolveLogFilePathDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDirName {
		t.Fatalf("default dir want %s got %s", defaultLogDirName, filepath.Dir(got))
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("default filename want %s got %s", defaultLogFilename, filepath.Base(got))
	}
}

func TestReleaseModeWritesStructuredFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "release.log"})

	log.Sugar().Infow("activation_done", "user_id", 42)
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, `"message":"activation_done"`) {
		t.Fatalf("expected JSON message field, got=%s", line)
	}
	if !strings.Contains(line, `"user_id":42`) {
		t.Fatalf("expected structured field, got=%s", line)
	}
}

func TestDebugModeStaysOnConsole(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})

	log.Info("debug-console-only")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create a log file")
	}
}

func TestNormalizePositiveInt(t *testing.T) {
	cases := []struct {
		value    int
		fallback int
		want     int
	}{
		{value: 5, fallback: 100, want: 5},
		{value: 0, fallback: 100, want: 100},
		{value: -1, fallback: 7, want: 7},
	}
	for _, tc := range cases {
		if got := normalizePositiveInt(tc.value, tc.fallback); got != tc.want {
			t.Fatalf("normalizePositiveInt(%d, %d) = %d, want %d", tc.value, tc.fallback, got, tc.want)
		}
	}
}

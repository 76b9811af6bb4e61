package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogFilePathCreatesConfiguredDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	got, err := resolveLogFilePath(Options{Dir: dir})
	if err != nil {
		t.Fatalf("resolve log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("expected log file to be created: %v", err)
	}
}

func TestNewReleaseWritesJSONToFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "cart.log"})
	log.Sugar().Warnw("cart_persist_failed", "key", "storefront:cart_items")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "cart.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"message":"cart_persist_failed"`) {
		t.Fatalf("expected json message field, got=%s", text)
	}
	if !strings.Contains(text, `"key":"storefront:cart_items"`) {
		t.Fatalf("expected structured field, got=%s", text)
	}
}

func TestNewDebugDoesNotWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New(" Debug ", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug-log-test")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestNormalizePositiveInt(t *testing.T) {
	if got := normalizePositiveInt(0, 7); got != 7 {
		t.Fatalf("want fallback 7 got %d", got)
	}
	if got := normalizePositiveInt(3, 7); got != 3 {
		t.Fatalf("want 3 got %d", got)
	}
}

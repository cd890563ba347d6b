package logger

import (
	"path/filepath"
	"testing"
)

func newFileLogger(t *testing.T) *ZapLogger {
	t.Helper()
	return NewIsolatedLogger(filepath.Join(t.TempDir(), "app.log"))
}

func TestGetLogsNewestFirstWithLevelFilter(t *testing.T) {
	l := newFileLogger(t)
	l.Info("lifecycle", "transition applied", map[string]interface{}{"status": "paid"})
	l.Info("lifecycle", "transition applied", map[string]interface{}{"status": "refunded"})
	l.Error("gateway", "charge rejected", map[string]interface{}{"error": "denied"})
	if err := l.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	all, err := l.GetLogs("", 10, 0)
	if err != nil {
		t.Fatalf("GetLogs returned %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].Message != "charge rejected" {
		t.Errorf("first entry = %q, want the newest line first", all[0].Message)
	}
	if all[0].Module != "gateway" {
		t.Errorf("module = %q, want gateway", all[0].Module)
	}

	errors, err := l.GetLogs("ERROR", 10, 0)
	if err != nil {
		t.Fatalf("GetLogs(ERROR) returned %v", err)
	}
	if len(errors) != 1 || errors[0].Level != "ERROR" {
		t.Errorf("level filter returned %+v, want the single error entry", errors)
	}
}

func TestGetLogsPagination(t *testing.T) {
	l := newFileLogger(t)
	for i := 0; i < 5; i++ {
		l.Info("worker", "recalc", map[string]interface{}{"n": i})
	}

	page, err := l.GetLogs("", 2, 2)
	if err != nil {
		t.Fatalf("GetLogs returned %v", err)
	}
	if len(page) != 2 {
		t.Errorf("page has %d entries, want 2", len(page))
	}

	past, err := l.GetLogs("", 2, 10)
	if err != nil {
		t.Fatalf("GetLogs past end returned %v", err)
	}
	if len(past) != 0 {
		t.Errorf("offset past the end returned %d entries, want none", len(past))
	}
}

func TestGetLogByIdRoundTrip(t *testing.T) {
	l := newFileLogger(t)
	l.Warn("hub", "client dropped", nil)

	entries, err := l.GetLogs("", 1, 0)
	if err != nil || len(entries) != 1 {
		t.Fatalf("GetLogs = %v entries, err %v", len(entries), err)
	}

	entry, err := l.GetLogById(entries[0].Id)
	if err != nil {
		t.Fatalf("GetLogById returned %v", err)
	}
	if entry == nil || entry.Message != "client dropped" {
		t.Errorf("entry = %+v, want the written warning back", entry)
	}

	missing, err := l.GetLogById("no-such-id")
	if err != nil {
		t.Fatalf("GetLogById(miss) returned %v", err)
	}
	if missing != nil {
		t.Errorf("missing id returned %+v, want nil", missing)
	}
}

func TestGetLogsMissingFile(t *testing.T) {
	l := &ZapLogger{filePath: filepath.Join(t.TempDir(), "never-written.log")}
	entries, err := l.GetLogs("", 10, 0)
	if err != nil {
		t.Fatalf("GetLogs returned %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries from a missing file, want none", len(entries))
	}
}

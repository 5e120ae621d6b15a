package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestChecker_Exists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewChecker()
	if !c.Exists(path) {
		t.Error("expected file to exist")
	}
	if c.Exists(filepath.Join(dir, "missing.json")) {
		t.Error("expected missing file to not exist")
	}
}

func TestChecker_Latest(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	files := []struct {
		name string
		age  time.Duration
	}{
		{"old.json", 2 * time.Hour},
		{"new.JSON", time.Minute},
		{"newest.txt", 0},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
			t.Fatal(err)
		}
		mod := now.Add(-f.age)
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := NewChecker().Latest(dir, ".json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(got) != "new.JSON" {
		t.Errorf("expected new.JSON, got %s", got)
	}
}

func TestChecker_LatestNone(t *testing.T) {
	if _, err := NewChecker().Latest(t.TempDir(), ".json"); err == nil {
		t.Error("expected error for directory without matches")
	}
	if _, err := NewChecker().Latest(filepath.Join(t.TempDir(), "missing"), ".json"); err == nil {
		t.Error("expected error for missing directory")
	}
}

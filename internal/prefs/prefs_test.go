package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestMemoryStoreExpiry(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = c.now

	_ = s.Set("voice", "Daniel", time.Hour)
	_ = s.Set("theme", "dark", 0)

	if v, ok := s.Get("voice"); !ok || v != "Daniel" {
		t.Fatalf("Get(voice) = %q, %v", v, ok)
	}

	c.t = c.t.Add(2 * time.Hour)
	if _, ok := s.Get("voice"); ok {
		t.Error("voice should have expired")
	}
	if v, ok := s.Get("theme"); !ok || v != "dark" {
		t.Errorf("value without ttl should not expire, got %q, %v", v, ok)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yml")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() on missing file error = %v", err)
	}
	if _, ok := s.Get("voice"); ok {
		t.Fatal("new store should be empty")
	}

	if err := s.Set("voice", "Serena", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Serena") {
		t.Errorf("file does not contain the value:\n%s", data)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := reopened.Get("voice"); !ok || v != "Serena" {
		t.Errorf("Get() after reopen = %q, %v", v, ok)
	}

	if err := reopened.Delete("voice"); err != nil {
		t.Fatal(err)
	}
	if _, ok := reopened.Get("voice"); ok {
		t.Error("deleted value still present")
	}
}

func TestFileStoreExpiredValuesAreDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yml")
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	s, _ := Open(path)
	s.now = c.now
	_ = s.Set("voice", "Daniel", time.Minute)

	c.t = c.t.Add(time.Hour)
	if _, ok := s.Get("voice"); ok {
		t.Error("voice should have expired")
	}

	_ = s.Set("rate", "1.5", 0)
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Daniel") {
		t.Errorf("expired value written back:\n%s", data)
	}
}

func TestOpenRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yml")
	if err := os.WriteFile(path, []byte("preferences: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Open() should fail on invalid YAML")
	}
}

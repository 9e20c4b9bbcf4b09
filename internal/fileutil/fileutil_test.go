package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWithTempDirRemovesOnSuccess(t *testing.T) {
	parent := t.TempDir()
	var seen string
	err := WithTempDir(parent, "mkvaudur-*", func(dir string) error {
		seen = dir
		return os.WriteFile(filepath.Join(dir, "silence.ac3"), []byte("data"), 0o644)
	})
	if err != nil {
		t.Fatalf("WithTempDir returned error: %v", err)
	}
	if filepath.Dir(seen) != parent {
		t.Fatalf("expected temp dir under %s, got %s", parent, seen)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Fatalf("expected temp dir to be removed, stat err=%v", err)
	}
}

func TestWithTempDirRemovesOnFailure(t *testing.T) {
	parent := t.TempDir()
	sentinel := errors.New("boom")
	var seen string
	err := WithTempDir(parent, "mkvaudur-*", func(dir string) error {
		seen = dir
		if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
			t.Fatal(err)
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Fatalf("expected temp dir to be removed after failure, stat err=%v", err)
	}
}

func TestWithTempDirMissingParent(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	called := false
	err := WithTempDir(missing, "x-*", func(string) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error for missing parent")
	}
	if called {
		t.Fatal("callback should not run when the directory cannot be created")
	}
}

func TestCanonicalResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "track.ac3")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.ac3")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	want, err := filepath.EvalSymlinks(target)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Canonical(link)
	if err != nil {
		t.Fatalf("Canonical returned error: %v", err)
	}
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCanonicalRelativePath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.wav"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	got, err := Canonical("a.wav")
	if err != nil {
		t.Fatalf("Canonical returned error: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "a.wav" {
		t.Fatalf("expected absolute path ending in a.wav, got %s", got)
	}
}

func TestCanonicalErrors(t *testing.T) {
	if _, err := Canonical(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Canonical(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing path")
	}
}

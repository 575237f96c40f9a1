package disk

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_SaveWritesFileAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	s, err := New(root, "/media")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ref, err := s.Save(context.Background(), "profile_images", "abc.png", strings.NewReader("PNG"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ref != "/media/profile_images/abc.png" {
		t.Fatalf("unexpected ref %s", ref)
	}

	b, err := os.ReadFile(filepath.Join(root, "profile_images", "abc.png"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(b) != "PNG" {
		t.Fatalf("unexpected content %q", b)
	}
}

func TestStore_SaveStripsTraversal(t *testing.T) {
	root := t.TempDir()
	s, _ := New(root, "/media/")

	ref, err := s.Save(context.Background(), "../../etc", "../passwd.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ref != "/media/etc/passwd.png" {
		t.Fatalf("unexpected ref %s", ref)
	}
	if _, err := os.Stat(filepath.Join(root, "etc", "passwd.png")); err != nil {
		t.Fatalf("expected file inside root: %v", err)
	}
}

func TestStore_SaveRejectsLargeImages(t *testing.T) {
	s, _ := New(t.TempDir(), "/media/")
	big := bytes.Repeat([]byte{'a'}, MaxImageBytes+1)
	if _, err := s.Save(context.Background(), "pet_images", "big.png", bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

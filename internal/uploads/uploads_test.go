package uploads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocal_Save(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads/", 1024)
	if err != nil {
		t.Fatal(err)
	}

	f, err := l.Save(context.Background(), "Recibo.PDF", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save() error = %v, want nil", err)
	}

	if !strings.HasSuffix(f.Name, ".pdf") {
		t.Errorf("Name = %q, want .pdf suffix", f.Name)
	}
	if f.URL != "/uploads/"+f.Name {
		t.Errorf("URL = %q, want /uploads/%s", f.URL, f.Name)
	}
	if f.Size != 8 {
		t.Errorf("Size = %d, want 8", f.Size)
	}
	b, err := os.ReadFile(filepath.Join(dir, f.Name))
	if err != nil || string(b) != "%PDF-1.4" {
		t.Errorf("stored content = %q, %v", b, err)
	}
}

func TestLocal_SaveTooLarge(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads", 4)
	if err != nil {
		t.Fatal(err)
	}

	_, err = l.Save(context.Background(), "a.png", "image/png", strings.NewReader("12345"))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Save() error = %v, want ErrTooLarge", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("left %d files behind, want 0", len(entries))
	}
}

func TestLocal_SaveRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads", 1024)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"pagina.html", "logo.svg", "semextensao"} {
		_, err := l.Save(context.Background(), name, "text/html", strings.NewReader("<script></script>"))
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Save(%q) error = %v, want ErrUnsupportedType", name, err)
		}
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("left %d files behind, want 0", len(entries))
	}
}

func TestLocal_RemoveMissing(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "/uploads", 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Remove("nope.pdf"); err != nil {
		t.Errorf("Remove() error = %v, want nil", err)
	}
}

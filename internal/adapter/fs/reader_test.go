package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"lawrag/internal/domain"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTextFileUTF8(t *testing.T) {
	want := "第一条 中华人民共和国民法典\nArticle 1"
	path := writeFile(t, "law.txt", []byte(want))

	got, err := ReadTextFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReadTextFileUTF8BOM(t *testing.T) {
	want := "合同编"
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte(want)...)
	path := writeFile(t, "bom.txt", raw)

	got, err := ReadTextFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("BOM not stripped: got %q", got)
	}
}

func TestReadTextFileGBKFallback(t *testing.T) {
	want := "侵权责任编 第一千一百七十九条"
	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(want))
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "gbk.txt", raw)

	got, err := ReadTextFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("GBK fallback failed: got %q, want %q", got, want)
	}
}

func TestReadTextFileUndecodable(t *testing.T) {
	// 0xFF is not a valid lead byte in UTF-8, GBK or GB18030.
	path := writeFile(t, "junk.txt", []byte{0xFF, 0xFF, 0xFF})

	_, err := ReadTextFile(path)
	if err == nil {
		t.Fatal("expected decode error")
	}
	var decErr *domain.DecodeError
	if !errors.As(err, &decErr) {
		t.Errorf("expected DecodeError, got %T: %v", err, err)
	}
	if decErr.Path != path {
		t.Errorf("error should name the failing file, got %q", decErr.Path)
	}
}

func TestReadTextFileMissing(t *testing.T) {
	_, err := ReadTextFile(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWalkerFindsTxtFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(rel string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("text"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("civil/code.txt")
	mustWrite("criminal/code.txt")
	mustWrite("notes.md")
	mustWrite("readme")

	files, err := NewWalker(nil).Walk(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 txt files, got %d: %v", len(files), files)
	}
	// Sorted order.
	if filepath.Base(filepath.Dir(files[0])) != "civil" {
		t.Errorf("expected civil first, got %v", files)
	}
}

func TestWalkerCustomPatterns(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "law.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "law.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := NewWalker([]string{"**/*.md"}).Walk(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Ext(files[0]) != ".md" {
		t.Errorf("pattern not honored: %v", files)
	}
}

package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(files[name])); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	return r
}

var docx = map[string]string{
	"[Content_Types].xml":   "types",
	"word/document.xml":     "document",
	"word/styles.xml":       "styles",
	"word/media/image1.wmf": "wmf",
	"docProps/core.xml":     "core",
}

func TestWalk(t *testing.T) {
	r := buildZip(t, docx)

	tests := []struct {
		name  string
		match MatchFunc
		want  int
	}{
		{"word parts", Prefix("word/"), 3},
		{"media only", Prefix("word/media/"), 1},
		{"several prefixes", Prefix("word/media/", "docProps/"), 2},
		{"everything", nil, 5},
		{"nothing", Prefix("xl/"), 0},
		{"case sensitive", Prefix("Word/"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []string
			err := Walk(r, tt.match, func(f *zip.File) error {
				visited = append(visited, f.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if len(visited) != tt.want {
				t.Errorf("visited %d files (%v), want %d", len(visited), visited, tt.want)
			}
		})
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	r := buildZip(t, map[string]string{"a/1": "", "a/2": "", "a/3": ""})

	stopErr := errors.New("stop walking")
	visited := 0
	err := Walk(r, Prefix("a/"), func(*zip.File) error {
		visited++
		if visited == 2 {
			return stopErr
		}
		return nil
	})
	if !errors.Is(err, stopErr) {
		t.Errorf("Walk() error = %v, want %v", err, stopErr)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2", visited)
	}
}

func TestWalk_UnsafePaths(t *testing.T) {
	for _, name := range []string{"../evil.xml", "word/../../evil.xml", "/abs/evil.xml", `word\..\evil.xml`} {
		t.Run(name, func(t *testing.T) {
			r := buildZip(t, map[string]string{"word/document.xml": "", name: ""})
			if err := Walk(r, nil, func(*zip.File) error { return nil }); err == nil {
				t.Errorf("expected error for unsafe entry %q", name)
			}
		})
	}
}

func TestReadParts(t *testing.T) {
	r := buildZip(t, docx)

	parts, err := ReadParts(r, 1024, Prefix("word/", "docProps/core.xml"))
	if err != nil {
		t.Fatalf("ReadParts() error = %v", err)
	}
	if len(parts) != 4 {
		t.Errorf("got %d parts, want 4", len(parts))
	}
	if got := string(parts["word/document.xml"]); got != "document" {
		t.Errorf("document = %q, want %q", got, "document")
	}
	if _, ok := parts["[Content_Types].xml"]; ok {
		t.Error("unselected part was read")
	}
}

func TestReadParts_TooLarge(t *testing.T) {
	r := buildZip(t, map[string]string{
		"word/document.xml": "small",
		"word/media/big":    strings.Repeat("x", 100),
	})

	_, err := ReadParts(r, 64, nil)
	if err == nil || !strings.Contains(err.Error(), "word/media/big") {
		t.Errorf("ReadParts() error = %v, want error naming oversized part", err)
	}
	if _, err := ReadParts(r, 0, nil); err != nil {
		t.Errorf("ReadParts() without limit error = %v", err)
	}
}

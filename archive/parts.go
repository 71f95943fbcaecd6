// Package archive reads parts of OOXML packages on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// MatchFunc selects package parts by name.
type MatchFunc func(name string) bool

// Prefix matches parts which names start with any of given prefixes.
func Prefix(prefixes ...string) MatchFunc {
	return func(name string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
}

// Walk calls fn for every regular file of r selected by match. Entries with
// path traversal components ("..") or absolute paths make whole package
// invalid, OOXML never has them. If fn returns an error processing stops.
func Walk(r *zip.Reader, match MatchFunc, fn func(f *zip.File) error) error {
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if f.FileInfo().IsDir() || (match != nil && !match(f.Name)) {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// ReadParts loads selected parts into memory. Parts larger than limit bytes
// are rejected.
func ReadParts(r *zip.Reader, limit int64, match MatchFunc) (map[string][]byte, error) {
	parts := make(map[string][]byte)
	err := Walk(r, match, func(f *zip.File) error {
		data, err := ReadPart(f, limit)
		if err != nil {
			return fmt.Errorf("unable to read part %s: %w", f.Name, err)
		}
		parts[f.Name] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parts, nil
}

// ReadPart reads single part, declared size is checked before decompression
// and actual size is capped while reading.
func ReadPart(f *zip.File, limit int64) ([]byte, error) {
	if limit > 0 && f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("part is too large (%d bytes)", f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var src io.Reader = rc
	if limit > 0 {
		src = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("part is too large (more than %d bytes)", limit)
	}
	return data, nil
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

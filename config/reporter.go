package config

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"docx2nav/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {

	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

type entry struct {
	original string
	actual   string
	stamp    time.Time
	data     []byte
	// temporary copy owned by report, removed when report is closed
	owned bool
}

// Report accumulates information necessary to prepare full debug report:
// logs, configuration, parsed document dumps, run summary and produced tree.
// NOTE: presently not to be used concurrently!
type Report struct {
	// entries is a map of names to entries of files or directories to be put in the final archive later.
	entries map[string]entry
	file    *os.File
}

// Close finalizes debug report.
func (r *Report) Close() error {
	if r == nil {
		// Ignore uninitialized cases to avoid checking in many places. This means no report has been requested.
		return nil
	}
	if r.file == nil {
		return nil
	}
	defer r.file.Close()
	defer r.cleanup()
	return r.finalize()
}

// cleanup removes temporary copies made by StoreCopy and directories handed
// over by StoreTemp.
func (r *Report) cleanup() {
	for _, e := range r.entries {
		if e.owned {
			os.RemoveAll(e.dir())
		}
	}
}

func (e entry) dir() string {
	if info, err := os.Stat(e.actual); err == nil && info.IsDir() {
		return e.actual
	}
	return filepath.Dir(e.actual)
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store saves path to file or directory to be put in the final archive later.
// Path is not copied, it has to exist when report is closed.
func (r *Report) Store(name, path string) {
	r.add(name, path, entry{original: path, actual: path})
}

// StoreTemp is the same as Store, but path is owned by report from now on and
// will be removed after report is closed.
func (r *Report) StoreTemp(name, path string) {
	r.add(name, path, entry{original: path, actual: path, owned: true})
}

// StoreData saves binary data to be put in the final archive later as a file
// under requested name.
func (r *Report) StoreData(name string, data []byte) {
	r.add(name, "", entry{data: data, stamp: time.Now()})
}

// add registers entry. Re-registering the same path under the same name is
// allowed, anything else under a taken name is a programming error.
func (r *Report) add(name, path string, e entry) {
	if r == nil {
		// No report has been requested.
		return
	}
	if old, exists := r.entries[name]; exists && (len(path) == 0 || old.original != path) {
		panic(fmt.Sprintf("report entry [%s] is already taken by %q", name, old.original))
	}
	if len(path) > 0 {
		if p, err := filepath.Abs(path); err == nil {
			e.actual = p
		}
	}
	r.entries[name] = e
}

// StoreJSON saves indented JSON representation of v under requested name.
// Marshaling errors are stored instead of data, report is best effort.
func (r *Report) StoreJSON(name string, v any) {
	if r == nil {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("unable to marshal %T: %v", v, err))
	}
	r.StoreData(name, data)
}

// StoreCopy makes a snapshot of the file now, so later changes (or removal)
// of the original do not affect the report. Repeated names are versioned with
// timestamps.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	actual, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(actual)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("unable to store copy of %s: not a regular file", path)
	}

	e := entry{stamp: time.Now(), original: path, owned: true}
	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, e.stamp.UnixNano())
	}

	dir, err := os.MkdirTemp("", misc.GetAppName()+"-r-")
	if err != nil {
		return err
	}
	if e.actual, err = copyFile(dir, actual, info.ModTime()); err != nil {
		os.RemoveAll(dir)
		return err
	}
	r.entries[name] = e
	return nil
}

func copyFile(dir, src string, modTime time.Time) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dst := filepath.Join(dir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, os.Chtimes(dst, modTime, modTime)
}

// finalize writes MANIFEST followed by every stored entry. Files which
// disappeared since they were stored are skipped.
func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	names, manifest := prepareManifest(r.entries)
	if err := saveFile(arc, "MANIFEST", time.Now(), manifest); err != nil {
		return err
	}

	for _, name := range names {
		e := r.entries[name]
		if len(e.data) > 0 {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		info, err := os.Stat(e.actual)
		switch {
		case err != nil:
			continue
		case info.Mode().IsRegular():
			err = saveOpened(arc, name, e.actual, info.ModTime())
		case info.IsDir():
			err = saveDir(arc, name, e.actual)
		}
		if err != nil {
			return err
		}
	}
	return arc.Close()
}

func prepareManifest(entries map[string]entry) ([]string, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	if len(entries) == 0 {
		return nil, buf
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now()
	for _, k := range keys {
		e := entries[k]
		if e.stamp.IsZero() {
			e.stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s : %s\n", e.stamp.UTC().Format(time.UnixDate), k, e.original, e.actual)
	}
	return keys, buf
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func saveOpened(dst *zip.Writer, name, path string, t time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(dst, name, t, f)
}

// saveDir puts regular files of the directory tree under name, links and
// other special files are ignored.
func saveDir(dst *zip.Writer, name, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return saveOpened(dst, filepath.ToSlash(filepath.Join(name, rel)), path, info.ModTime())
	})
}

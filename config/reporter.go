package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"destyle/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates an empty report backed by the configured destination,
// falling back to a temporary file when it cannot be created.
func (conf *ReporterConfig) Prepare() (*Report, error) {

	r := &Report{items: make(map[string]item)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

// item is one future archive member: either inline data or a path captured
// now and read at Close time.
type item struct {
	source   string
	resolved string
	stamp    time.Time
	data     []byte
}

// Report collects migration artifacts (sources, lowered outputs, logs) and
// writes them out as one zip archive on Close. A nil *Report is valid and
// means no report was requested; every method is a no-op then.
// Not safe for concurrent use.
type Report struct {
	items map[string]item
	file  *os.File
}

// Close writes the archive and releases the underlying file.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.finalize()
}

// Name returns the absolute path of the archive being written.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store registers a file or directory path to be archived under name. The
// path is read when the report closes, not now. Registering a different path
// under an existing name is a programming error.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}

	if old, exists := r.items[name]; exists && old.source != path {
		panic(fmt.Sprintf("report name collision for [%s]: was %s, now %s", name, old.source, path))
	}

	it := item{
		source:   path,
		resolved: path,
	}
	if p, err := filepath.Abs(path); err == nil {
		it.resolved = p
	}
	r.items[name] = it
}

// StoreData registers in-memory content to be archived under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}

	if _, exists := r.items[name]; exists {
		panic(fmt.Sprintf("report name collision for [%s]", name))
	}

	r.items[name] = item{
		data:  data,
		stamp: time.Now(),
	}
}

// StoreCopy snapshots a file or directory into a temporary location right
// now, so later mutations do not leak into the report. Repeated names are
// versioned with a timestamp, storing the same path twice is fine.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	it := item{
		stamp:  time.Now(),
		source: path,
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	it.resolved = absPath

	if _, exists := r.items[name]; exists {
		name = fmt.Sprintf("%s-%d", name, it.stamp.UnixNano())
	}

	dir, err := os.MkdirTemp("", "destyle-r-")
	if err != nil {
		return err
	}

	if info, err := os.Stat(it.resolved); err == nil {
		switch {
		case info.Mode().IsRegular():
			where, err := snapshotFile(dir, it.resolved, info.ModTime())
			if err != nil {
				return err
			}
			it.resolved = where
		case info.Mode().IsDir():
			if err := snapshotTree(dir, it.resolved); err != nil {
				return err
			}
			it.resolved = dir
		}
	} else {
		return err
	}

	r.items[name] = it
	return nil
}

func snapshotFile(dir, src string, modTime time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", err
	}
	if err = out.Sync(); err != nil {
		return "", err
	}
	out.Close()

	// keep original timestamps so the archive reflects the source
	if err := os.Chtimes(dst, modTime, modTime); err != nil {
		return "", err
	}
	return dst, nil
}

func snapshotTree(dir, src string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			// links, sockets and the like have no place in a report
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		newpath := filepath.Join(dir, rel)

		if _, err := snapshotFile(filepath.Dir(newpath), path, info.ModTime()); err != nil {
			return err
		}
		return nil
	})
}

// finalize writes the archive: a MANIFEST first, then every registered item
// in manifest order. Paths that vanished since registration are skipped.
func (r *Report) finalize() error {

	arc := zip.NewWriter(r.file)
	defer arc.Close()

	t := time.Now()

	names, manifest := buildManifest(r.items)
	if err := archiveFile(arc, "MANIFEST", t, manifest); err != nil {
		return err
	}

	for _, name := range names {
		if len(r.items[name].data) > 0 {
			if err := archiveFile(arc, name, r.items[name].stamp, bytes.NewReader(r.items[name].data)); err != nil {
				return err
			}
			continue
		}

		path := r.items[name].resolved
		if info, err := os.Stat(path); err == nil {
			switch {
			case info.Mode().IsRegular():
				var src io.ReadCloser
				if src, err = os.Open(path); err != nil {
					return err
				}
				if err := archiveFile(arc, name, info.ModTime(), src); err != nil {
					src.Close()
					return err
				}
				src.Close()
			case info.Mode().IsDir():
				if err := archiveTree(arc, name, path); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func buildManifest(items map[string]item) ([]string, *bytes.Buffer) {

	now := time.Now()

	buf := new(bytes.Buffer)
	if len(items) == 0 {
		return nil, buf
	}

	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		it := items[k]
		if it.stamp.IsZero() {
			it.stamp = now
		}
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s : %s\n", it.stamp.UTC().Format(time.UnixDate), k, it.source, it.resolved))
	}
	return keys, buf
}

func archiveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return nil
}

func archiveTree(dst *zip.Writer, name, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		// the registered name becomes the directory prefix inside the archive
		rel = filepath.ToSlash(filepath.Join(name, rel))

		var src io.ReadCloser
		if src, err = os.Open(path); err != nil {
			return err
		}
		defer src.Close()

		if err = archiveFile(dst, rel, info.ModTime(), src); err != nil {
			return err
		}
		return nil
	})
}

package fsops

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MemFS implements FS with an in-memory tree for testing.
// Paths are cleaned with filepath.Clean before use.
type MemFS struct {
	files map[string][]byte
	dirs  map[string]bool

	// Writes counts successful AtomicWrite calls.
	Writes int
}

// NewMemFS creates an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// AddFile stores content at path, creating parent directories.
func (m *MemFS) AddFile(path string, content string) {
	path = filepath.Clean(path)
	m.files[path] = []byte(content)
	m.addParents(path)
}

// RemoveFile deletes a file if present.
func (m *MemFS) RemoveFile(path string) {
	delete(m.files, filepath.Clean(path))
}

func (m *MemFS) addParents(path string) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if dir == filepath.Dir(dir) {
			return
		}
	}
}

// ReadFile returns the stored content or fs.ErrNotExist.
func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// Exists reports whether a file or directory is stored at path.
func (m *MemFS) Exists(path string) (bool, error) {
	path = filepath.Clean(path)
	_, isFile := m.files[path]
	return isFile || m.dirs[path], nil
}

// IsDir reports whether path is a stored directory.
func (m *MemFS) IsDir(path string) (bool, error) {
	return m.dirs[filepath.Clean(path)], nil
}

// MkdirAll records path and its parents as directories.
func (m *MemFS) MkdirAll(path string, _ os.FileMode) error {
	path = filepath.Clean(path)
	m.dirs[path] = true
	m.addParents(path)
	return nil
}

// AtomicWrite stores data at path.
func (m *MemFS) AtomicWrite(path string, data []byte, _ os.FileMode) error {
	m.AddFile(path, string(data))
	m.Writes++
	return nil
}

// WalkDir visits root and its descendants in the same order as
// filepath.WalkDir: a directory first, then its entries sorted by name.
func (m *MemFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	root = filepath.Clean(root)
	if _, isFile := m.files[root]; isFile {
		err := fn(root, memEntry{name: filepath.Base(root)}, nil)
		if err == filepath.SkipDir || err == filepath.SkipAll {
			return nil
		}
		return err
	}
	if !m.dirs[root] {
		err := fn(root, nil, &fs.PathError{Op: "lstat", Path: root, Err: fs.ErrNotExist})
		if err == filepath.SkipDir || err == filepath.SkipAll {
			return nil
		}
		return err
	}
	err := m.walk(root, fn)
	if err == filepath.SkipDir || err == filepath.SkipAll {
		return nil
	}
	return err
}

func (m *MemFS) walk(dir string, fn fs.WalkDirFunc) error {
	if err := fn(dir, memEntry{name: filepath.Base(dir), dir: true}, nil); err != nil {
		return err
	}
	for _, entry := range m.children(dir) {
		path := filepath.Join(dir, entry.name)
		if entry.dir {
			if err := m.walk(path, fn); err != nil {
				if err == filepath.SkipDir {
					continue
				}
				return err
			}
			continue
		}
		if err := fn(path, entry, nil); err != nil {
			if err == filepath.SkipDir {
				return nil
			}
			return err
		}
	}
	return nil
}

func (m *MemFS) children(dir string) []memEntry {
	prefix := dir + string(filepath.Separator)
	if dir == string(filepath.Separator) {
		prefix = dir
	}
	seen := make(map[string]memEntry)
	collect := func(path string, isDir bool) {
		if path == dir || !strings.HasPrefix(path, prefix) {
			return
		}
		rest := path[len(prefix):]
		if i := strings.IndexRune(rest, filepath.Separator); i >= 0 {
			seen[rest[:i]] = memEntry{name: rest[:i], dir: true}
			return
		}
		if _, ok := seen[rest]; !ok || isDir {
			seen[rest] = memEntry{name: rest, dir: isDir}
		}
	}
	for path := range m.dirs {
		collect(path, true)
	}
	for path := range m.files {
		collect(path, false)
	}

	entries := make([]memEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries
}

type memEntry struct {
	name string
	dir  bool
}

func (e memEntry) Name() string { return e.name }
func (e memEntry) IsDir() bool  { return e.dir }

func (e memEntry) Type() fs.FileMode {
	if e.dir {
		return fs.ModeDir
	}
	return 0
}

func (e memEntry) Info() (fs.FileInfo, error) { return memInfo(e), nil }

type memInfo memEntry

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return 0 }
func (i memInfo) Mode() fs.FileMode  { return memEntry(i).Type() }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }

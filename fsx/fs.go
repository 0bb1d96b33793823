// Package fsx extends io/fs with file creation, so emitted code can be
// written to disk or to an in-memory tree in tests.
package fsx

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

var _ fs.FS = (*MemFS)(nil)
var _ fs.ReadDirFile = (*MemFS)(nil)
var _ fs.DirEntry = (*MemFS)(nil)
var _ CreateFS = (*MemFS)(nil)
var _ MkdirFS = (*MemFS)(nil)
var _ fs.FS = DirFS("")
var _ CreateFS = DirFS("")
var _ MkdirFS = DirFS("")

type WriteableFile interface {
	fs.File
	io.Writer
}

type CreateFS interface {
	fs.FS
	// Create creates or truncates the file at the slash-separated path
	// name. Its parent directory must exist.
	Create(name string) (WriteableFile, error)
}

type MkdirFS interface {
	fs.FS
	Mkdir(name string, perm fs.FileMode) error
}

func Create(fsys fs.FS, name string) (WriteableFile, error) {
	if cfs, ok := fsys.(CreateFS); ok {
		return cfs.Create(name)
	}
	return nil, &fs.PathError{Op: "create", Path: name, Err: errors.ErrUnsupported}
}

func Mkdir(fsys fs.FS, name string, perm fs.FileMode) error {
	if mfs, ok := fsys.(MkdirFS); ok {
		return mfs.Mkdir(name, perm)
	}
	return &fs.PathError{Op: "mkdir", Path: name, Err: errors.ErrUnsupported}
}

// CreateAll creates the missing parent directories of name and then the
// file itself.
func CreateAll(fsys fs.FS, name string, perm fs.FileMode) (WriteableFile, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrInvalid}
	}
	dir := path.Dir(name)
	if dir != "." {
		elems := strings.Split(dir, "/")
		for i := range elems {
			err := Mkdir(fsys, path.Join(elems[:i+1]...), perm)
			if err != nil && !errors.Is(err, fs.ErrExist) {
				return nil, err
			}
		}
	}
	return Create(fsys, name)
}

// MemFS is a writable in-memory directory tree.
type MemFS struct {
	entries []fs.File
	memFile
}

// NewMemFS builds a tree holding the given (path, contents) pairs.
func NewMemFS(files ...[2]string) *MemFS {
	root := newMemDir("", 0)
	for _, file := range files {
		cur := root
		elems := strings.Split(file[0], "/")
		for i, elem := range elems {
			if i == len(elems)-1 {
				cur.entries = append(cur.entries, newMemFile(elem, 0, []byte(file[1])))
				break
			}
			j := cur.index(elem)
			if j < 0 {
				cur.entries = append(cur.entries, newMemDir(elem, 0))
				j = len(cur.entries) - 1
			}
			cur = cur.entries[j].(*MemFS)
		}
	}
	return root
}

func newMemDir(name string, perm fs.FileMode) *MemFS {
	return &MemFS{
		entries: []fs.File{},
		memFile: memFile{name: name, mode: perm | fs.ModeDir},
	}
}

func (m *MemFS) index(name string) int {
	return slices.IndexFunc(m.entries, func(f fs.File) bool {
		return nameOf(f) == name
	})
}

// dir walks to the directory holding the last element of name.
func (m *MemFS) dir(op, name string) (*MemFS, string, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	parent, base := path.Split(name)
	cur := m
	if parent != "" {
		f, err := m.open(path.Clean(parent))
		if err != nil {
			return nil, "", &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
		}
		d, ok := f.(*MemFS)
		if !ok {
			return nil, "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
		}
		cur = d.orig()
	}
	return cur, base, nil
}

func (m *MemFS) Read([]byte) (int, error) { return 0, errors.New("cannot read directory") }

func (m *MemFS) ReadDir(count int) ([]fs.DirEntry, error) {
	n := len(m.entries) - m.offset
	if n == 0 && count > 0 {
		return nil, io.EOF
	}
	if count > 0 && n > count {
		n = count
	}
	list := make([]fs.DirEntry, n)
	for i := range list {
		list[i] = m.entries[m.offset+i].(fs.DirEntry)
	}
	m.offset += n
	return list, nil
}

func (m *MemFS) Mkdir(name string, perm fs.FileMode) error {
	d, base, err := m.dir("mkdir", name)
	if err != nil {
		return err
	}
	if d.index(base) >= 0 {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	d.entries = append(d.entries, newMemDir(base, perm))
	return nil
}

// Create truncates an existing file.
func (m *MemFS) Create(name string) (WriteableFile, error) {
	d, base, err := m.dir("create", name)
	if err != nil {
		return nil, err
	}
	if i := d.index(base); i >= 0 {
		f, ok := d.entries[i].(*memFile)
		if !ok {
			return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
		}
		f.data = nil
		f.offset = 0
		return f, nil
	}
	f := newMemFile(base, 0, nil)
	d.entries = append(d.entries, f)
	return f, nil
}

func (m *MemFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return m.open(name)
}

func (m *MemFS) open(name string) (fs.File, error) {
	cur := m
	for _, elem := range strings.Split(name, "/") {
		if elem == "." {
			continue
		}
		i := cur.index(elem)
		if i < 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		d, ok := cur.entries[i].(*MemFS)
		if !ok {
			return cur.entries[i], nil
		}
		cur = d
	}
	// Directory handles carry their own ReadDir offset.
	h := *cur
	h.origin = cur
	return &h, nil
}

// orig is the tree node a directory handle was opened from.
func (m *MemFS) orig() *MemFS {
	if m.origin != nil {
		return m.origin
	}
	return m
}

var _ fs.FileInfo = (*memFile)(nil)
var _ fs.DirEntry = (*memFile)(nil)
var _ WriteableFile = (*memFile)(nil)

type memFile struct {
	name   string
	mode   fs.FileMode
	data   []byte
	offset int
	origin *MemFS
}

func newMemFile(name string, mode fs.FileMode, data []byte) *memFile {
	return &memFile{name: name, mode: mode, data: data}
}

// Write appends to the file regardless of the read offset.
func (f *memFile) Write(p []byte) (int, error) {
	f.data = append(f.data, p...)
	return len(p), nil
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.offset >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.offset:])
	f.offset += n
	return n, nil
}

func (f *memFile) Close() error {
	f.offset = 0
	return nil
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f, nil }
func (f *memFile) Info() (fs.FileInfo, error) { return f, nil }
func (f *memFile) Type() fs.FileMode          { return f.mode.Type() }
func (f *memFile) IsDir() bool                { return f.mode.IsDir() }
func (*memFile) ModTime() time.Time           { return time.Time{} }
func (f *memFile) Mode() fs.FileMode          { return f.mode }
func (f *memFile) Name() string               { return f.name }
func (f *memFile) Size() int64                { return int64(len(f.data)) }
func (*memFile) Sys() any                     { return nil }

func nameOf(f fs.File) string {
	switch f := f.(type) {
	case *MemFS:
		return f.name
	case *memFile:
		return f.name
	}
	panic("unreachable")
}

// DirFS is an operating system directory, like os.DirFS, that can also
// create files and directories.
type DirFS string

func (dir DirFS) Open(name string) (fs.File, error) {
	fullname, err := dir.join(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	f, err := os.Open(fullname)
	if err != nil {
		return nil, rename(err, name)
	}
	return f, nil
}

func (dir DirFS) Create(name string) (WriteableFile, error) {
	fullname, err := dir.join(name)
	if err != nil {
		return nil, &fs.PathError{Op: "create", Path: name, Err: err}
	}
	f, err := os.Create(fullname)
	if err != nil {
		return nil, rename(err, name)
	}
	return f, nil
}

func (dir DirFS) Mkdir(name string, perm fs.FileMode) error {
	fullname, err := dir.join(name)
	if err != nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: err}
	}
	return rename(os.Mkdir(fullname, perm), name)
}

func (dir DirFS) Stat(name string) (fs.FileInfo, error) {
	fullname, err := dir.join(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	fi, err := os.Stat(fullname)
	if err != nil {
		return nil, rename(err, name)
	}
	return fi, nil
}

func (dir DirFS) join(name string) (string, error) {
	if dir == "" {
		return "", errors.New("fsx: DirFS with empty root")
	}
	local, err := filepath.Localize(name)
	if err != nil {
		return "", fs.ErrInvalid
	}
	return filepath.Join(string(dir), local), nil
}

// rename reports a path error against the name relative to the root.
func rename(err error, name string) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		pe.Path = name
	}
	return err
}

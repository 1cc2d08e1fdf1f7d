package gossa

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// DefaultExtensions are the file extensions recognized as subtitle scripts.
var DefaultExtensions = []string{".ass", ".ssa"}

// Source lists subtitle script files for ParseAll.
type Source interface {
	// Open returns the content of a path returned by ListFiles.
	Open(path string) (io.ReadCloser, error)

	// ListFiles returns all script paths known to this source.
	ListFiles() ([]string, error)
}

// SourceOption configures a source.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	extensions []string
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		extensions: DefaultExtensions,
	}
}

// WithExtensions sets the file extensions to recognize for this source.
func WithExtensions(exts ...string) SourceOption {
	return func(c *sourceConfig) {
		c.extensions = exts
	}
}

type osOpener struct{}

func (osOpener) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// --- Files Source (explicit paths) ---

type fileSource struct {
	osOpener
	paths []string
}

// Files creates a Source over explicit file paths. Extensions are not
// checked.
func Files(paths ...string) Source {
	return &fileSource{paths: slices.Clone(paths)}
}

func (s *fileSource) ListFiles() ([]string, error) {
	return slices.Clone(s.paths), nil
}

// --- Dir Source (single directory) ---

type dirSource struct {
	osOpener
	path   string
	config sourceConfig
}

// Dir creates a Source over the scripts in a single directory (no
// recursion). The directory is read on each ListFiles call.
func Dir(path string, opts ...SourceOption) (Source, error) {
	if err := checkDir(path); err != nil {
		return nil, err
	}
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &dirSource{path: path, config: cfg}, nil
}

// MustDir is like Dir but panics on error.
func MustDir(path string, opts ...SourceOption) Source {
	src, err := Dir(path, opts...)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *dirSource) ListFiles() ([]string, error) {
	extSet := makeExtensionSet(s.config.extensions)
	var files []string

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.path, entry.Name())
		if hasValidExtension(path, extSet) {
			files = append(files, path)
		}
	}
	return files, nil
}

// --- DirTree Source (recursive directory) ---

type treeSource struct {
	osOpener
	files []string
}

// DirTree creates a Source that recursively walks a directory tree once at
// construction. Unreadable subdirectories are skipped.
func DirTree(root string, opts ...SourceOption) (Source, error) {
	if err := checkDir(root); err != nil {
		return nil, err
	}

	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	extSet := makeExtensionSet(cfg.extensions)
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if hasValidExtension(path, extSet) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &treeSource{files: files}, nil
}

// MustDirTree is like DirTree but panics on error.
func MustDirTree(root string, opts ...SourceOption) Source {
	src, err := DirTree(root, opts...)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *treeSource) ListFiles() ([]string, error) {
	return slices.Clone(s.files), nil
}

// --- FS Source (for embed.FS, testing, http filesystems) ---

type fsSource struct {
	name   string
	fsys   fs.FS
	config sourceConfig

	once  sync.Once
	files []string
	err   error
}

// FS creates a Source backed by an fs.FS (e.g., embed.FS).
// The name prefixes listed paths ("name:dir/file.ass").
// It lazily walks the filesystem on first use.
func FS(name string, fsys fs.FS, opts ...SourceOption) Source {
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &fsSource{
		name:   name,
		fsys:   fsys,
		config: cfg,
	}
}

func (s *fsSource) Open(path string) (io.ReadCloser, error) {
	return s.fsys.Open(strings.TrimPrefix(path, s.name+":"))
}

func (s *fsSource) ListFiles() ([]string, error) {
	s.once.Do(func() {
		s.files, s.err = s.walk()
	})
	if s.err != nil {
		return nil, s.err
	}

	files := make([]string, 0, len(s.files))
	for _, path := range s.files {
		files = append(files, s.name+":"+path)
	}
	return files, nil
}

func (s *fsSource) walk() ([]string, error) {
	extSet := makeExtensionSet(s.config.extensions)
	var files []string

	err := fs.WalkDir(s.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if hasValidExtension(path, extSet) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// --- Multi Source (combines multiple sources) ---

type multiSource struct {
	sources []Source
	once    sync.Once
	owner   map[string]Source
	err     error
}

// Multi combines multiple sources into one. Paths listed by more than one
// source are opened from the first.
func Multi(sources ...Source) Source {
	return &multiSource{sources: sources}
}

func (s *multiSource) index() {
	s.owner = make(map[string]Source)
	for _, src := range s.sources {
		files, err := src.ListFiles()
		if err != nil {
			s.err = err
			return
		}
		for _, f := range files {
			if _, ok := s.owner[f]; !ok {
				s.owner[f] = src
			}
		}
	}
}

func (s *multiSource) Open(path string) (io.ReadCloser, error) {
	s.once.Do(s.index)
	if s.err != nil {
		return nil, s.err
	}
	src, ok := s.owner[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return src.Open(path)
}

func (s *multiSource) ListFiles() ([]string, error) {
	s.once.Do(s.index)
	if s.err != nil {
		return nil, s.err
	}
	files := make([]string, 0, len(s.owner))
	for f := range s.owner {
		files = append(files, f)
	}
	slices.Sort(files)
	return files, nil
}

// --- Helpers ---

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	return nil
}

func makeExtensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}

func hasValidExtension(path string, extSet map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := extSet[ext]
	return ok
}

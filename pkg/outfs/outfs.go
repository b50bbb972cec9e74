// Package outfs manages the files one generator run writes: a main stream
// and, in split mode, one file per catalog entry opened on first use. Every
// file the set creates is remembered so a failed run can remove them all.
package outfs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
)

// MainName is the main output's file name in the split directory when no
// output file is given.
const MainName = "wrap.c"

var validEntryName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var (
	ErrInvalidEntryName = errors.New("invalid entry name")
	ErrNotSplit         = errors.New("output set has no split directory")
	ErrClosed           = errors.New("output set is closed")
)

type file struct {
	f *os.File
	w *bufio.Writer
}

func create(path string) (*file, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &file{f: f, w: bufio.NewWriter(f)}, nil
}

func (fl *file) close() error {
	err := fl.w.Flush()
	if cerr := fl.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Set is the output of one run.
type Set struct {
	Mu      sync.Mutex
	Dir     string // split directory, empty for single-stream output
	main    io.Writer
	mainOut *file
	entries map[string]*file
	created []string
	closed  bool
}

// New returns a set writing its main stream to path, or to stdout when path
// is empty. With a split directory dir, an empty path means dir/wrap.c.
func New(path, dir string) (*Set, error) {
	s := &Set{Dir: dir, entries: make(map[string]*file)}
	if path == "" && dir != "" {
		path = filepath.Join(dir, MainName)
	}
	if path == "" {
		s.main = os.Stdout
		return s, nil
	}

	out, err := create(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open file %s for writing: %w", path, err)
	}
	s.mainOut = out
	s.main = out.w
	s.created = append(s.created, path)
	slog.Debug("opened output", "path", path)
	return s, nil
}

// NewWriter returns a single-stream set over w. It creates no files.
func NewWriter(w io.Writer) *Set {
	return &Set{main: w, entries: make(map[string]*file)}
}

// Main returns the main stream.
func (s *Set) Main() io.Writer {
	return s.main
}

// Split reports whether the set has a split directory.
func (s *Set) Split() bool {
	return s.Dir != ""
}

// Entry returns the file for catalog entry name, <dir>/<name>.c. The first
// call creates it and writes header; later calls return the same writer.
func (s *Set) Entry(name string, header func() string) (io.Writer, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.Dir == "" {
		return nil, ErrNotSplit
	}
	if !validEntryName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntryName, name)
	}
	if e, ok := s.entries[name]; ok {
		return e.w, nil
	}

	path := filepath.Join(s.Dir, name+".c")
	e, err := create(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open file %s for writing: %w", path, err)
	}
	s.entries[name] = e
	s.created = append(s.created, path)
	slog.Debug("opened output", "path", path)

	if header != nil {
		if _, err := e.w.WriteString(header()); err != nil {
			return nil, err
		}
	}
	return e.w, nil
}

// Files returns the sorted paths of every file the set created.
func (s *Set) Files() []string {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	files := append([]string(nil), s.created...)
	sort.Strings(files)
	return files
}

// Close flushes and closes every file. It returns the first error.
func (s *Set) Close() error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.closeAll()
}

func (s *Set) closeAll() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if s.mainOut != nil {
		firstErr = s.mainOut.close()
	}
	for _, e := range s.entries {
		if err := e.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Abort closes every file and removes every file the set created, so a
// failed run leaves nothing behind.
func (s *Set) Abort() error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	firstErr := s.closeAll()
	for _, path := range s.created {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		slog.Debug("removed output", "path", path)
	}
	s.created = nil
	return firstErr
}

// internal/watcher/source.go
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	ierrors "inkwell/internal/errors"
)

// Kind is the type of change an Event reports.
type Kind uint8

const (
	KindCreate Kind = iota + 1
	KindWrite
	KindRemove
	KindRename
	KindChmod
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindWrite:
		return "write"
	case KindRemove:
		return "remove"
	case KindRename:
		return "rename"
	case KindChmod:
		return "chmod"
	}
	return "unknown"
}

// Event is a single change somewhere under the watched root.
type Event struct {
	Path string
	Kind Kind
}

// Source produces change events until it is closed. Both channels are closed
// once Close returns.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// FSSource watches a directory tree with fsnotify. fsnotify is not recursive,
// so every directory is added on its own, including ones created later.
type FSSource struct {
	root   string
	ignore Filter
	w      *fsnotify.Watcher

	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewFSSource starts watching root and every directory below it, except the
// ones ignore matches. A nil ignore watches everything.
func NewFSSource(root string, ignore Filter) (*FSSource, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ierrors.Watch(root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, ierrors.Watch(abs, err)
	}
	if !info.IsDir() {
		return nil, ierrors.Watch(abs, fs.ErrInvalid)
	}
	if ignore == nil {
		ignore = func(string) bool { return false }
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ierrors.Watch(abs, err)
	}
	s := &FSSource{
		root:   abs,
		ignore: ignore,
		w:      w,
		events: make(chan Event),
		errors: make(chan error),
		done:   make(chan struct{}),
	}
	if err := s.addTree(abs); err != nil {
		w.Close()
		return nil, err
	}
	s.wg.Add(1)
	go s.loop()
	return s, nil
}

func (s *FSSource) Events() <-chan Event { return s.events }
func (s *FSSource) Errors() <-chan error { return s.errors }

// Close stops the watcher and waits for the delivery goroutine to exit.
func (s *FSSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.w.Close()
		s.wg.Wait()
		close(s.events)
		close(s.errors)
	})
	return err
}

func (s *FSSource) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return ierrors.Watch(path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.root && s.ignore(path) {
			return filepath.SkipDir
		}
		if err := s.w.Add(path); err != nil {
			return ierrors.Watch(path, err)
		}
		return nil
	})
}

func (s *FSSource) loop() {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-s.w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) && !s.ignore(ev.Name) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := s.addTree(ev.Name); err != nil && !s.send(nil, err) {
						return
					}
				}
			}
			if !s.send(&Event{Path: ev.Name, Kind: kindOf(ev.Op)}, nil) {
				return
			}
		case err, ok := <-s.w.Errors:
			if !ok {
				return
			}
			if !s.send(nil, ierrors.Watch(s.root, err)) {
				return
			}
		}
	}
}

// send delivers an event or an error, giving up once the source is closed.
func (s *FSSource) send(ev *Event, err error) bool {
	if ev != nil {
		select {
		case s.events <- *ev:
			return true
		case <-s.done:
			return false
		}
	}
	select {
	case s.errors <- err:
		return true
	case <-s.done:
		return false
	}
}

func kindOf(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Create):
		return KindCreate
	case op.Has(fsnotify.Write):
		return KindWrite
	case op.Has(fsnotify.Remove):
		return KindRemove
	case op.Has(fsnotify.Rename):
		return KindRename
	}
	return KindChmod
}

package vfs

import (
	"strings"
	"sync/atomic"
	"time"
)

// Top-level directory names.
const (
	MoviesDir = "Movies"
	SeriesDir = "Series"
)

// Snapshot is one immutable build of the virtual tree. Handlers resolve
// paths against the snapshot they grabbed at request start, so a
// refresh mid-request cannot change what a directory listing shows.
type Snapshot struct {
	Root    *Node
	BuiltAt time.Time
}

// Empty returns a snapshot with the fixed top-level layout and nothing
// in it. Served until the first successful refresh completes.
func Empty() *Snapshot {
	now := time.Now()
	root := NewDir("", now)
	root.ensureDir(MoviesDir)
	root.ensureDir(SeriesDir)
	return &Snapshot{Root: root, BuiltAt: now}
}

// Resolve walks a slash-separated path to a node. The empty path and
// "/" resolve to the root.
func (s *Snapshot) Resolve(path string) (*Node, bool) {
	node := s.Root
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		child, ok := node.Child(part)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// Store publishes snapshots atomically. Readers always see either the
// previous complete tree or the new one, never a partial build.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store seeded with an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(Empty())
	return s
}

// Current returns the latest published snapshot.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Publish swaps in a new snapshot.
func (s *Store) Publish(snapshot *Snapshot) {
	s.current.Store(snapshot)
}

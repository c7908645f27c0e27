// Package vfs holds the virtual media tree: immutable snapshots of the
// remote torrent collection reorganized into a Movies/Series layout.
package vfs

import (
	"sort"
	"time"
)

// Node is a directory or file in the virtual tree. Nodes are mutable
// while a builder assembles them and frozen once their snapshot is
// published; readers must never modify one.
type Node struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
	// Href is the URL-encoded remote path used to stream this file.
	// Empty for directories.
	Href string

	children map[string]*Node
}

// NewDir creates an empty directory node.
func NewDir(name string, modTime time.Time) *Node {
	return &Node{
		Name:     name,
		IsDir:    true,
		ModTime:  modTime,
		children: make(map[string]*Node),
	}
}

// NewFile creates a file node.
func NewFile(name string, size int64, href string, modTime time.Time) *Node {
	return &Node{
		Name:    name,
		Size:    size,
		Href:    href,
		ModTime: modTime,
	}
}

// Child looks up a direct child by name.
func (n *Node) Child(name string) (*Node, bool) {
	if !n.IsDir {
		return nil, false
	}
	child, ok := n.children[name]
	return child, ok
}

// Children returns the direct children sorted by name.
func (n *Node) Children() []*Node {
	if !n.IsDir {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, child := range n.children {
		out = append(out, child)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ensureDir returns the named child directory, creating it if missing.
// Returns false when the name is already taken by a file.
func (n *Node) ensureDir(name string) (*Node, bool) {
	if child, ok := n.children[name]; ok {
		if !child.IsDir {
			return nil, false
		}
		return child, true
	}
	child := NewDir(name, n.ModTime)
	n.children[name] = child
	return child, true
}

// addFile inserts a file under n. The first file to claim a name wins:
// duplicate names across torrents are common and silently replacing an
// entry would make the tree depend on listing order.
func (n *Node) addFile(file *Node) bool {
	if _, exists := n.children[file.Name]; exists {
		return false
	}
	n.children[file.Name] = file
	return true
}

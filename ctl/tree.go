package ctl

import (
	"fmt"
	"strings"
	"sync"
)

// Getter returns the current value of a node.
type Getter func() any

// Setter applies a new value to a node.
type Setter func(v any) error

type node struct {
	name     string
	children []*node
	index    map[string]int
	get      Getter
	set      Setter
}

func (n *node) leaf() bool {
	return n.get != nil || n.set != nil
}

// Tree is a Controller backed by registered getter/setter closures.
// MIB components are registration indices at each level, so a MIB stays
// valid for the lifetime of the tree.
type Tree struct {
	mu   sync.RWMutex
	root node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{root: node{index: make(map[string]int)}}
}

// Register adds a node. A nil get makes it write-only, a nil set read-only.
// Interior nodes are created as needed; a name cannot be both a leaf and
// an interior node.
func (t *Tree) Register(name string, get Getter, set Setter) error {
	if get == nil && set == nil {
		return fmt.Errorf("%w: %q has neither getter nor setter", ErrBadName, name)
	}
	parts, err := splitName(name)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := &t.root
	for i, part := range parts {
		if n.leaf() {
			return fmt.Errorf("%w: %q is a leaf", ErrExists, strings.Join(parts[:i], "."))
		}
		idx, ok := n.index[part]
		if !ok {
			n.children = append(n.children, &node{name: part, index: make(map[string]int)})
			idx = len(n.children) - 1
			n.index[part] = idx
		}
		n = n.children[idx]
	}
	if n.leaf() || len(n.children) > 0 {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}
	n.get, n.set = get, set
	return nil
}

func (t *Tree) lookup(name string) (*node, error) {
	parts, err := splitName(name)
	if err != nil {
		return nil, err
	}
	n := &t.root
	for _, part := range parts {
		idx, ok := n.index[part]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoEntry, name)
		}
		n = n.children[idx]
	}
	return n, nil
}

func (t *Tree) lookupMIB(mib MIB) (*node, error) {
	if len(mib) == 0 {
		return nil, fmt.Errorf("%w: empty MIB", ErrNoEntry)
	}
	n := &t.root
	for _, c := range mib {
		if c < 0 || c >= len(n.children) {
			return nil, fmt.Errorf("%w: MIB %s", ErrNoEntry, mib)
		}
		n = n.children[c]
	}
	return n, nil
}

func read(n *node, label string, out any) error {
	if !n.leaf() {
		return fmt.Errorf("%w: %s is not a leaf", ErrNoEntry, label)
	}
	if n.get == nil {
		return fmt.Errorf("%w: %s", ErrWriteOnly, label)
	}
	if err := Assign(out, n.get()); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

func write(n *node, label string, in any) error {
	if !n.leaf() {
		return fmt.Errorf("%w: %s is not a leaf", ErrNoEntry, label)
	}
	if n.set == nil {
		return fmt.Errorf("%w: %s", ErrReadOnly, label)
	}
	if err := n.set(in); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

// Read implements Controller.
func (t *Tree) Read(name string, out any) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, err := t.lookup(name)
	if err != nil {
		return err
	}
	return read(n, name, out)
}

// Write implements Controller.
func (t *Tree) Write(name string, in any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.lookup(name)
	if err != nil {
		return err
	}
	return write(n, name, in)
}

// Exchange implements Controller. The read and the write happen under one
// lock acquisition, so no other control call can interleave.
func (t *Tree) Exchange(name string, out, in any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.lookup(name)
	if err != nil {
		return err
	}
	if out != nil {
		if err := read(n, name, out); err != nil {
			return err
		}
	}
	if in != nil {
		return write(n, name, in)
	}
	return nil
}

// NameToMIB implements Controller.
func (t *Tree) NameToMIB(name string) (MIB, error) {
	parts, err := splitName(name)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	mib := make(MIB, 0, len(parts))
	n := &t.root
	for _, part := range parts {
		idx, ok := n.index[part]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoEntry, name)
		}
		mib = append(mib, idx)
		n = n.children[idx]
	}
	return mib, nil
}

// ReadMIB implements Controller.
func (t *Tree) ReadMIB(mib MIB, out any) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, err := t.lookupMIB(mib)
	if err != nil {
		return err
	}
	return read(n, "MIB "+mib.String(), out)
}

// WriteMIB implements Controller.
func (t *Tree) WriteMIB(mib MIB, in any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.lookupMIB(mib)
	if err != nil {
		return err
	}
	return write(n, "MIB "+mib.String(), in)
}

// Entry is one leaf reported by Names.
type Entry struct {
	Name     string
	Readable bool
	Writable bool
}

// Names lists the leaves under prefix in registration order. An empty
// prefix lists everything.
func (t *Tree) Names(prefix string) ([]Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	start := &t.root
	if prefix != "" {
		n, err := t.lookup(prefix)
		if err != nil {
			return nil, err
		}
		start = n
	}

	var out []Entry
	var walk func(n *node, path string)
	walk = func(n *node, path string) {
		if n.leaf() {
			out = append(out, Entry{Name: path, Readable: n.get != nil, Writable: n.set != nil})
			return
		}
		for _, c := range n.children {
			p := c.name
			if path != "" {
				p = path + "." + c.name
			}
			walk(c, p)
		}
	}
	walk(start, prefix)
	return out, nil
}

// Lister is implemented by controllers that can enumerate their names.
type Lister interface {
	Names(prefix string) ([]Entry, error)
}

package svgdoc

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Document is a staging surface for elements awaiting rasterization.
// Mounted elements are written as hidden files (dot-prefixed) inside the
// document directory. Document is safe for concurrent use.
type Document struct {
	dir   string
	owned bool

	mu     sync.Mutex
	mounts map[string]*Mount
}

// NewDocument creates a document rooted at dir.
// If dir is empty, a private temporary directory is created and removed by Close.
func NewDocument(dir string) (*Document, error) {
	owned := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "svg2png-")
		if err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}
		dir, owned = tmp, true
	} else if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Document{dir: dir, owned: owned, mounts: make(map[string]*Mount)}, nil
}

// Dir returns the staging directory.
func (d *Document) Dir() string {
	return d.dir
}

// Attach serializes el into a hidden staging file and registers the mount.
// Nothing is registered when Attach fails.
func (d *Document) Attach(el *Element) (*Mount, error) {
	markup, err := el.Markup()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	path := filepath.Join(d.dir, "."+id+".svg")
	if err := os.WriteFile(path, markup, 0600); err != nil {
		return nil, fmt.Errorf("stage svg: %w", err)
	}

	m := &Mount{id: id, path: path, markup: markup, element: el, doc: d}

	d.mu.Lock()
	d.mounts[id] = m
	d.mu.Unlock()
	return m, nil
}

// Attached returns the number of live mounts.
func (d *Document) Attached() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.mounts)
}

// Close detaches every live mount and removes the directory if the document created it.
func (d *Document) Close() error {
	d.mu.Lock()
	live := make([]*Mount, 0, len(d.mounts))
	for _, m := range d.mounts {
		live = append(live, m)
	}
	d.mu.Unlock()

	var firstErr error
	for _, m := range live {
		if err := m.Detach(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.owned {
		if err := os.RemoveAll(d.dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Document) remove(id string) {
	d.mu.Lock()
	delete(d.mounts, id)
	d.mu.Unlock()
}

// Mount is an element attached to a Document.
type Mount struct {
	id      string
	path    string
	markup  []byte
	element *Element
	doc     *Document

	once sync.Once
	err  error
}

// ID returns the unique mount identifier.
func (m *Mount) ID() string { return m.id }

// Path returns the hidden staging file holding the markup.
func (m *Mount) Path() string { return m.path }

// Markup returns the serialized element as staged.
func (m *Mount) Markup() []byte { return m.markup }

// Element returns the mounted element.
func (m *Mount) Element() *Element { return m.element }

// Detach removes the staging file and unregisters the mount.
// It is idempotent; later calls return the first call's result.
func (m *Mount) Detach() error {
	m.once.Do(func() {
		m.doc.remove(m.id)
		if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
			m.err = fmt.Errorf("remove staged svg: %w", err)
		}
	})
	return m.err
}

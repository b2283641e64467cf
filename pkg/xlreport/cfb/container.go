// Package cfb loads and writes OLE2 compound document containers.
//
// A container is held fully in memory as a tree of storages and streams, so
// individual streams can be replaced while every other stream is written back
// with identical bytes.
package cfb

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps/types"
)

// ErrNotFound indicates a named entry does not exist in a storage.
var ErrNotFound = errors.New("entry not found")

// ErrInvalidContainer indicates the input is not a readable compound document.
var ErrInvalidContainer = errors.New("invalid compound document")

// Entry is a storage or a stream of a compound document.
type Entry struct {
	// Name is the entry name including any leading control character
	// (e.g. "\x05SummaryInformation").
	Name string
	// Storage is true for storages, false for streams.
	Storage bool
	// Data is the stream content (nil for storages).
	Data []byte
	// Children holds the entries of a storage.
	Children []*Entry
	// CLSID is the class of the object held in a storage.
	CLSID types.Guid
	// StateBits holds application-defined storage flags.
	StateBits uint32
	// Created and Modified are the storage timestamps.
	Created, Modified types.FileTime
}

// Container is an in-memory compound document.
type Container struct {
	// Root is the root storage ("Root Entry").
	Root *Entry
}

// New returns an empty container.
func New() *Container {
	return &Container{Root: &Entry{Name: "Root Entry", Storage: true}}
}

// Read loads every storage and stream of a compound document.
func Read(r io.ReaderAt) (*Container, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}

	meta, err := readMetadata(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}

	c := New()
	meta[0].apply(c.Root)
	storages := map[string]*Entry{"": c.Root}
	for i := 1; ; i++ {
		f, err := doc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
		}
		if i >= len(meta) {
			return nil, fmt.Errorf("%w: directory has %d entries", ErrInvalidContainer, len(meta))
		}
		if len(f.Path) == 0 && f.Name == c.Root.Name {
			continue
		}

		parent := ensureStorage(storages, f.Path)
		name := entryName(f)
		key := pathKey(append(append([]string{}, f.Path...), f.Name))

		if f.FileInfo().IsDir() {
			st, ok := storages[key]
			if ok {
				st.Name = name
			} else {
				st = &Entry{Name: name, Storage: true}
				parent.Children = append(parent.Children, st)
				storages[key] = st
			}
			meta[i].apply(st)
			continue
		}

		data := make([]byte, f.Size)
		if f.Size > 0 {
			if _, err := io.ReadFull(f, data); err != nil {
				return nil, fmt.Errorf("%w: stream %q: %v", ErrInvalidContainer, name, err)
			}
		}
		stream := &Entry{Name: name, Data: data}
		meta[i].apply(stream)
		parent.Children = append(parent.Children, stream)
	}

	return c, nil
}

// entryName restores the control character mscfb strips from names such as
// "\x05SummaryInformation".
func entryName(f *mscfb.File) string {
	if f.Initial != 0 && f.Initial < 0x20 {
		initial := string(rune(f.Initial))
		if !strings.HasPrefix(f.Name, initial) {
			return initial + f.Name
		}
	}
	return f.Name
}

func pathKey(path []string) string {
	return strings.Join(path, "/")
}

// ensureStorage returns the storage for path, creating intermediate storages
// when children are listed before their parent.
func ensureStorage(storages map[string]*Entry, path []string) *Entry {
	parent := storages[""]
	for i := range path {
		key := pathKey(path[:i+1])
		st, ok := storages[key]
		if !ok {
			st = &Entry{Name: path[i], Storage: true}
			parent.Children = append(parent.Children, st)
			storages[key] = st
		}
		parent = st
	}
	return parent
}

// Find returns the direct child of e with the given name.
// Names compare case-insensitively, as in the compound document format.
func (e *Entry) Find(name string) (*Entry, bool) {
	for _, child := range e.Children {
		if strings.EqualFold(child.Name, name) {
			return child, true
		}
	}
	return nil, false
}

// Stream returns the content of a root-level stream.
func (c *Container) Stream(name string) ([]byte, bool) {
	e, ok := c.Root.Find(name)
	if !ok || e.Storage {
		return nil, false
	}
	return e.Data, true
}

// Remove deletes a root-level entry. It returns ErrNotFound when the entry
// does not exist.
func (c *Container) Remove(name string) error {
	for i, child := range c.Root.Children {
		if strings.EqualFold(child.Name, name) {
			c.Root.Children = append(c.Root.Children[:i], c.Root.Children[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Put stores data as a root-level stream, replacing any entry with that name.
func (c *Container) Put(name string, data []byte) {
	if e, ok := c.Root.Find(name); ok {
		*e = Entry{Name: name, Data: data}
		return
	}
	c.Root.Children = append(c.Root.Children, &Entry{Name: name, Data: data})
}

// Names lists the root-level entry names in storage order.
func (c *Container) Names() []string {
	names := make([]string, len(c.Root.Children))
	for i, child := range c.Root.Children {
		names[i] = child.Name
	}
	return names
}

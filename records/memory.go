package records

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Memory implements a simple in-memory version of a Store. It is intended
// mainly for testing.
type Memory struct {
	m    sync.RWMutex
	docs map[string]Document
}

var _ Store = &Memory{}

// NewMemory returns a new, empty memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Document)}
}

// Insert stores a copy of doc.
func (ms *Memory) Insert(doc *Document) (string, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	if _, ok := ms.docs[doc.ID]; ok {
		return "", errors.Wrap(ErrDuplicate, doc.ID)
	}
	d := *doc
	d.Value = append([]byte(nil), doc.Value...)
	if d.Created.IsZero() {
		d.Created = time.Now()
	}
	ms.docs[doc.ID] = d
	return doc.ID, nil
}

// FindByID returns a copy of the document with the given ID.
func (ms *Memory) FindByID(id string) (*Document, error) {
	ms.m.RLock()
	d, ok := ms.docs[id]
	ms.m.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	d.Value = append([]byte(nil), d.Value...)
	return &d, nil
}

// DeleteByID removes the document with the given ID.
func (ms *Memory) DeleteByID(id string) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	if _, ok := ms.docs[id]; !ok {
		return ErrNotFound
	}
	delete(ms.docs, id)
	return nil
}

// HighestSerial returns the largest serial number recorded for sourceDir.
func (ms *Memory) HighestSerial(sourceDir string) (int, error) {
	var max int
	ms.m.RLock()
	for _, d := range ms.docs {
		if d.SourceDir() == sourceDir && d.Serial > max {
			max = d.Serial
		}
	}
	ms.m.RUnlock()
	return max, nil
}

// UpdateByID merges fields into the stored document.
func (ms *Memory) UpdateByID(id string, fields map[string]interface{}) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	d, ok := ms.docs[id]
	if !ok {
		return ErrNotFound
	}
	merged, err := mergeValue(d.Value, fields)
	if err != nil {
		return errors.Wrapf(err, "update %s", id)
	}
	d.Value = merged
	ms.docs[id] = d
	return nil
}

// Len returns the number of documents stored.
func (ms *Memory) Len() int {
	ms.m.RLock()
	defer ms.m.RUnlock()
	return len(ms.docs)
}

// List returns copies of every stored document, in no particular order.
func (ms *Memory) List() []*Document {
	ms.m.RLock()
	defer ms.m.RUnlock()
	result := make([]*Document, 0, len(ms.docs))
	for _, d := range ms.docs {
		d := d
		result = append(result, &d)
	}
	return result
}

// Close does nothing.
func (ms *Memory) Close() error {
	return nil
}

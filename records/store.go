// Package records keeps the provenance documents of accessioned files.
//
// A Store is a small document database keyed by record ID. Documents are
// opaque JSON values; the few fields which must be queried (the source
// directory and the serial number) are carried alongside so the backing
// database can index them.
//
// There are three implementations. MysqlStore is meant for production.
// QlStore uses the embedded QL database and is useful for development or a
// single workstation. Memory is for testing.
package records

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"time"
)

// A Document is one stored record.
type Document struct {
	ID           string
	OriginalName string // full path of the file before accession
	Serial       int    // serial number inside the source directory
	Created      time.Time
	Value        []byte // the JSON encoding of the record
}

// SourceDir returns the directory the document's file came from.
func (d *Document) SourceDir() string {
	return filepath.Dir(d.OriginalName)
}

// Store is the interface to the record database.
//
// Insert returns the ID under which the document was stored. It fails with
// ErrDuplicate if a document with the same ID exists.
//
// DeleteByID removes exactly one document. It returns ErrNotFound if there
// was nothing to remove and ErrInconsistent if more than one document was
// removed.
//
// HighestSerial returns the largest serial number of any document whose
// file came from sourceDir, or 0 if there are none.
//
// UpdateByID merges fields into the stored document: objects are merged
// key by key, any other value replaces what was there.
type Store interface {
	Insert(doc *Document) (string, error)
	FindByID(id string) (*Document, error)
	DeleteByID(id string) error
	HighestSerial(sourceDir string) (int, error)
	UpdateByID(id string, fields map[string]interface{}) error
	Close() error
}

var (
	// ErrNotFound means there is no document with the given ID.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate means a document with the given ID already exists.
	ErrDuplicate = errors.New("record already exists")

	// ErrInconsistent means an operation affected more documents than the
	// one it was meant for.
	ErrInconsistent = errors.New("record store inconsistent")

	// ErrBadCollection means a collection name is not a plain identifier.
	ErrBadCollection = errors.New("collection name must be letters, digits and underscores")
)

// DefaultCollection is the table used when none is configured.
const DefaultCollection = "records"

var collectionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkCollection(name string) (string, error) {
	if name == "" {
		return DefaultCollection, nil
	}
	if !collectionName.MatchString(name) {
		return "", ErrBadCollection
	}
	return name, nil
}

// mergeValue merges the JSON object fields into the JSON object value and
// returns the result.
func mergeValue(value []byte, fields map[string]interface{}) ([]byte, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(value, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]interface{})
	}
	merge(doc, fields)
	return json.Marshal(doc)
}

// merge copies src into dst. Where both hold an object under the same key
// the objects are merged recursively.
func merge(dst, src map[string]interface{}) {
	for k, v := range src {
		sub, ok := v.(map[string]interface{})
		if ok {
			if existing, ok := dst[k].(map[string]interface{}); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

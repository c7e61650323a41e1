package records

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/cznic/ql/driver"
	"github.com/pkg/errors"
)

// QlStore implements the Store interface using the QL embedded database.
type QlStore struct {
	db    *sql.DB
	table string
}

var _ Store = &QlStore{}

const qlRecordInit = `
	CREATE TABLE IF NOT EXISTS %[1]s (
		id string,
		source_dir string,
		original_name string,
		serial int64,
		created time,
		value string
	);
	CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_id ON %[1]s (id);
	CREATE INDEX IF NOT EXISTS %[1]s_source_dir ON %[1]s (source_dir);
`

// NewQlStore opens (creating if necessary) a QL database. filename is the
// name of the file to save the database to. The filename "memory" keeps
// everything in memory.
func NewQlStore(filename string, collection string) (*QlStore, error) {
	table, err := checkCollection(collection)
	if err != nil {
		return nil, err
	}
	var db *sql.DB
	if filename == "memory" {
		db, err = sql.Open("ql-mem", "mem.db")
	} else {
		db, err = sql.Open("ql", filename)
	}
	if err == nil {
		_, err = performExec(db, fmt.Sprintf(qlRecordInit, table))
	}
	if err != nil {
		return nil, errors.Wrap(err, "open QL")
	}
	return &QlStore{db: db, table: table}, nil
}

// Insert stores a new document.
func (qs *QlStore) Insert(doc *Document) (string, error) {
	stmt := fmt.Sprintf(`INSERT INTO %s VALUES (?1, ?2, ?3, ?4, ?5, ?6)`, qs.table)

	// the unique index would also catch this, but cannot be told apart
	// from other errors.
	if _, err := qs.FindByID(doc.ID); err == nil {
		return "", errors.Wrap(ErrDuplicate, doc.ID)
	}
	created := doc.Created
	if created.IsZero() {
		created = time.Now()
	}
	_, err := performExec(qs.db, stmt, doc.ID, doc.SourceDir(), doc.OriginalName, int64(doc.Serial), created, string(doc.Value))
	if err != nil {
		return "", errors.Wrapf(err, "insert %s", doc.ID)
	}
	return doc.ID, nil
}

// FindByID returns the document with the given ID.
func (qs *QlStore) FindByID(id string) (*Document, error) {
	query := fmt.Sprintf(`SELECT original_name, serial, created, value FROM %s WHERE id == ?1 LIMIT 1`, qs.table)

	doc := &Document{ID: id}
	var serial int64
	var value string
	err := qs.db.QueryRow(query, id).Scan(&doc.OriginalName, &serial, &doc.Created, &value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "find %s", id)
	}
	doc.Serial = int(serial)
	doc.Value = []byte(value)
	return doc, nil
}

// DeleteByID removes the document with the given ID.
func (qs *QlStore) DeleteByID(id string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE id == ?1`, qs.table)

	result, err := performExec(qs.db, stmt, id)
	if err != nil {
		return errors.Wrapf(err, "delete %s", id)
	}
	return checkDeleted(result, id)
}

// HighestSerial returns the largest serial number recorded for sourceDir.
func (qs *QlStore) HighestSerial(sourceDir string) (int, error) {
	query := fmt.Sprintf(`SELECT serial FROM %s WHERE source_dir == ?1 ORDER BY serial DESC LIMIT 1`, qs.table)

	var serial int64
	err := qs.db.QueryRow(query, sourceDir).Scan(&serial)
	if err == sql.ErrNoRows {
		return 0, nil
	} else if err != nil {
		return 0, errors.Wrapf(err, "highest serial for %s", sourceDir)
	}
	return int(serial), nil
}

// UpdateByID merges fields into the stored document.
func (qs *QlStore) UpdateByID(id string, fields map[string]interface{}) error {
	stmt := fmt.Sprintf(`UPDATE %s SET value = ?2 WHERE id == ?1`, qs.table)

	doc, err := qs.FindByID(id)
	if err != nil {
		return err
	}
	merged, err := mergeValue(doc.Value, fields)
	if err != nil {
		return errors.Wrapf(err, "update %s", id)
	}
	_, err = performExec(qs.db, stmt, id, string(merged))
	return errors.Wrapf(err, "update %s", id)
}

// Close closes the database.
func (qs *QlStore) Close() error {
	return qs.db.Close()
}

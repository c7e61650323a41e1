package records

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/BurntSushi/migration"
	// no _ in import mysql since we need mysql.NullTime and mysql.MySQLError
	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
)

// MysqlStore implements the Store interface using MySQL as the backing
// database.
type MysqlStore struct {
	db    *sql.DB
	table string
}

var _ Store = &MysqlStore{}

// MySQL error numbers we care about.
const (
	mysqlDuplicateEntry = 1062
	mysqlDBAccessDenied = 1044
	mysqlAccessDenied   = 1045
)

// Adapt the schema versioning for MySQL. Each collection keeps its own
// version table, since the migrations create the collection's table.
func mysqlVersioning(table string) dbVersion {
	return dbVersion{
		GetSQL:    fmt.Sprintf(`SELECT max(version) FROM %s_migration_version`, table),
		SetSQL:    fmt.Sprintf(`INSERT INTO %s_migration_version (version, applied) VALUES (?, now())`, table),
		CreateSQL: fmt.Sprintf(`CREATE TABLE %s_migration_version (version INTEGER, applied datetime)`, table),
	}
}

// NewMysqlStore connects to a MySQL database, brings the schema up to date,
// and returns a Store keeping documents in the given table (collection).
// The dial string looks like "user:password@tcp(localhost:3306)/dbname".
func NewMysqlStore(dial string, collection string) (*MysqlStore, error) {
	table, err := checkCollection(collection)
	if err != nil {
		return nil, err
	}
	versioning := mysqlVersioning(table)
	db, err := migration.OpenWith(
		"mysql",
		dial,
		mysqlMigrations(table),
		versioning.Get,
		versioning.Set)
	if err != nil {
		log.Printf("Open Mysql: %s", err.Error())
		return nil, err
	}
	return &MysqlStore{db: db, table: table}, nil
}

// IsAuthError returns true if err was caused by the MySQL server rejecting
// the user's credentials.
func IsAuthError(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == mysqlAccessDenied || merr.Number == mysqlDBAccessDenied
	}
	return false
}

func isDuplicate(err error) bool {
	var merr *mysql.MySQLError
	return errors.As(err, &merr) && merr.Number == mysqlDuplicateEntry
}

// Insert stores a new document.
func (ms *MysqlStore) Insert(doc *Document) (string, error) {
	stmt := fmt.Sprintf(`INSERT INTO %s (id, source_dir, original_name, serial, created, value) VALUES (?, ?, ?, ?, ?, ?)`, ms.table)

	created := doc.Created
	if created.IsZero() {
		created = time.Now()
	}
	_, err := ms.db.Exec(stmt, doc.ID, doc.SourceDir(), doc.OriginalName, doc.Serial, created, string(doc.Value))
	if err != nil {
		if isDuplicate(err) {
			return "", pkgerrors.Wrap(ErrDuplicate, doc.ID)
		}
		return "", pkgerrors.Wrapf(err, "insert %s", doc.ID)
	}
	return doc.ID, nil
}

// FindByID returns the document with the given ID.
func (ms *MysqlStore) FindByID(id string) (*Document, error) {
	query := fmt.Sprintf(`SELECT original_name, serial, created, value FROM %s WHERE id = ? LIMIT 1`, ms.table)

	doc := &Document{ID: id}
	var created mysql.NullTime
	var value string
	err := ms.db.QueryRow(query, id).Scan(&doc.OriginalName, &doc.Serial, &created, &value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, pkgerrors.Wrapf(err, "find %s", id)
	}
	if created.Valid {
		doc.Created = created.Time
	}
	doc.Value = []byte(value)
	return doc, nil
}

// DeleteByID removes the document with the given ID.
func (ms *MysqlStore) DeleteByID(id string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, ms.table)

	result, err := ms.db.Exec(stmt, id)
	if err != nil {
		return pkgerrors.Wrapf(err, "delete %s", id)
	}
	return checkDeleted(result, id)
}

func checkDeleted(result sql.Result, id string) error {
	nrows, err := result.RowsAffected()
	if err != nil {
		return pkgerrors.Wrapf(err, "delete %s", id)
	}
	switch {
	case nrows == 0:
		return ErrNotFound
	case nrows > 1:
		return pkgerrors.Wrapf(ErrInconsistent, "delete %s removed %d records", id, nrows)
	}
	return nil
}

// HighestSerial returns the largest serial number recorded for sourceDir.
func (ms *MysqlStore) HighestSerial(sourceDir string) (int, error) {
	query := fmt.Sprintf(`SELECT max(serial) FROM %s WHERE source_dir = ?`, ms.table)

	var serial sql.NullInt64
	err := ms.db.QueryRow(query, sourceDir).Scan(&serial)
	if err != nil && err != sql.ErrNoRows {
		return 0, pkgerrors.Wrapf(err, "highest serial for %s", sourceDir)
	}
	return int(serial.Int64), nil
}

// UpdateByID merges fields into the stored document. The read and the
// write happen inside one transaction.
func (ms *MysqlStore) UpdateByID(id string, fields map[string]interface{}) error {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE id = ? FOR UPDATE`, ms.table)
	stmt := fmt.Sprintf(`UPDATE %s SET value = ? WHERE id = ?`, ms.table)

	tx, err := ms.db.Begin()
	if err != nil {
		return err
	}
	var value string
	err = tx.QueryRow(query, id).Scan(&value)
	if err == sql.ErrNoRows {
		_ = tx.Rollback()
		return ErrNotFound
	} else if err != nil {
		_ = tx.Rollback()
		return pkgerrors.Wrapf(err, "update %s", id)
	}
	merged, err := mergeValue([]byte(value), fields)
	if err != nil {
		_ = tx.Rollback()
		return pkgerrors.Wrapf(err, "update %s", id)
	}
	if _, err = tx.Exec(stmt, string(merged), id); err != nil {
		_ = tx.Rollback()
		return pkgerrors.Wrapf(err, "update %s", id)
	}
	return tx.Commit()
}

// Close closes the database connection.
func (ms *MysqlStore) Close() error {
	return ms.db.Close()
}

// database migrations. each one is a go function. Add new ones to the end
// of the list. DO NOT change the order of items already in this list.
func mysqlMigrations(table string) []migration.Migrator {
	return []migration.Migrator{
		func(tx migration.LimitedTx) error {
			return execlist(tx, []string{
				fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id varchar(64) NOT NULL PRIMARY KEY,
				source_dir varchar(1024),
				original_name text,
				serial int,
				created datetime,
				value longtext)`, table),
			})
		},
		func(tx migration.LimitedTx) error {
			return execlist(tx, []string{
				fmt.Sprintf(`CREATE INDEX %s_source_dir ON %s (source_dir(255), serial)`, table, table),
			})
		},
	}
}

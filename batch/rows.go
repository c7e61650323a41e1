/*
Package batch runs a list of directory transfers and reports the ones which
failed.

The list usually comes from a CSV file. The header row must start with the
columns "source" and "destination". Any further column named
"arrange:<tag>" adds an arrangement field to every record made from that
row. The field is named <tag>Label, unless the tag already contains "name",
in which case the tag is used as is:

	source,destination,arrange:collection,arrange:series,arrange:filename
	/scans/box1,/archive/box1,Maps,Series 2,box1

gives the fields collectionLabel, seriesLabel and filename.
*/
package batch

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/ndlib/darkarchive/errcode"
)

const (
	sourceColumn      = "source"
	destinationColumn = "destination"
	arrangePrefix     = "arrange:"
	labelSuffix       = "Label"
)

// A Row is one directory transfer.
type Row struct {
	Source      string
	Destination string
	Arrangement map[string]string

	// Fields are the values as read, used when reporting the row.
	Fields []string
}

// A Table is a parsed batch file.
type Table struct {
	Header []string
	Rows   []Row

	// Invalid holds the rows which could not be used at all.
	Invalid []Failure
}

// ArrangementField returns the arrangement field name for a column tag.
func ArrangementField(tag string) string {
	if strings.Contains(tag, "name") {
		return tag
	}
	return tag + labelSuffix
}

// NewRow returns a row for a single transfer with no arrangement fields.
func NewRow(src, dst string) Row {
	return Row{
		Source:      src,
		Destination: dst,
		Arrangement: map[string]string{},
		Fields:      []string{src, dst},
	}
}

// ReadRows parses a batch file. A missing or malformed header is an
// errcode.InvalidHeader error, as is an arrangement column whose field
// name is one of reserved. Rows with fewer columns than the header are
// returned in Table.Invalid.
func ReadRows(r io.Reader, reserved ...string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errcode.Fatal(errcode.InvalidHeader, errors.New("empty file"))
	} else if err != nil {
		return nil, errcode.Fatal(errcode.InvalidHeader, err)
	}
	if len(header) < 2 || header[0] != sourceColumn || header[1] != destinationColumn {
		return nil, errcode.Fatal(errcode.InvalidHeader,
			errors.Errorf("expected %s,%s, received %s", sourceColumn, destinationColumn, strings.Join(header, ",")))
	}

	// column index to field name
	fields := make(map[int]string)
	for i, col := range header {
		if !strings.HasPrefix(col, arrangePrefix) {
			continue
		}
		name := ArrangementField(strings.TrimPrefix(col, arrangePrefix))
		for _, res := range reserved {
			if name == res {
				return nil, errcode.Fatal(errcode.InvalidHeader,
					errors.Errorf("column %s names the reserved field %s", col, res))
			}
		}
		fields[i] = name
	}
	// ignore columns which are not source, destination or arrangement
	need := 2
	for i := range fields {
		if i+1 > need {
			need = i + 1
		}
	}

	t := &Table{Header: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return t, errors.Wrap(err, "read batch file")
		}
		if len(record) < need {
			t.Invalid = append(t.Invalid, Failure{
				Row:    Row{Fields: record},
				Reason: "Not a valid input",
			})
			continue
		}
		row := Row{
			Source:      record[0],
			Destination: record[1],
			Arrangement: make(map[string]string),
			Fields:      record,
		}
		for i, name := range fields {
			row.Arrangement[name] = record[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

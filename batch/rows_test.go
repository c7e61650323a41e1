package batch

import (
	"errors"
	"strings"
	"testing"

	"github.com/ndlib/darkarchive/errcode"
)

func TestReadRows(t *testing.T) {
	input := `source,destination,arrange:collection,arrange:filename
/scans/box1,/archive/box1,Maps,box1
/scans/box2,/archive/box2,,box2
/scans/box3
`
	table, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Received %s", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Received %d rows, expected 2", len(table.Rows))
	}
	row := table.Rows[0]
	if row.Source != "/scans/box1" || row.Destination != "/archive/box1" {
		t.Errorf("Received %+v", row)
	}
	if row.Arrangement["collectionLabel"] != "Maps" {
		t.Errorf("Received %v, expected collectionLabel", row.Arrangement)
	}
	if row.Arrangement["filename"] != "box1" {
		t.Errorf("Received %v, expected filename", row.Arrangement)
	}
	if len(table.Invalid) != 1 || table.Invalid[0].Reason != "Not a valid input" {
		t.Errorf("Received %v, expected 1 invalid row", table.Invalid)
	}
	if table.Invalid[0].Row.Fields[0] != "/scans/box3" {
		t.Errorf("Received %v", table.Invalid[0].Row.Fields)
	}
}

func TestReadRowsHeader(t *testing.T) {
	var tests = []string{
		"",
		"destination,source\n/a,/b\n",
		"source\n/a\n",
		"src,dst\n",
	}
	for _, input := range tests {
		_, err := ReadRows(strings.NewReader(input))
		var e *errcode.Error
		if !errors.As(err, &e) || e.Code != errcode.InvalidHeader {
			t.Errorf("%q: Received %v, expected %s", input, err, errcode.InvalidHeader)
		}
	}
}

func TestReadRowsReserved(t *testing.T) {
	var tests = []struct {
		reserved string
		column   string
		valid    bool
	}{
		{"serial_name", "arrange:serial_name", false},
		{"serialLabel", "arrange:serial", false},
		{"serialNumber", "arrange:serialNumber", true},
		{"serialNumber", "arrange:series", true},
	}
	for _, test := range tests {
		input := "source,destination," + test.column + "\n/a,/b,7\n"
		_, err := ReadRows(strings.NewReader(input), test.reserved)
		var e *errcode.Error
		invalid := errors.As(err, &e) && e.Code == errcode.InvalidHeader
		if invalid == test.valid {
			t.Errorf("%s with %s reserved: Received %v, expected valid %v", test.column, test.reserved, err, test.valid)
		}
	}
}

func TestArrangementField(t *testing.T) {
	var tests = []struct {
		tag, expected string
	}{
		{"series", "seriesLabel"},
		{"filename", "filename"},
		{"name", "name"},
		{"box", "boxLabel"},
	}
	for _, test := range tests {
		result := ArrangementField(test.tag)
		if result != test.expected {
			t.Errorf("Received %s, expected %s", result, test.expected)
		}
	}
}

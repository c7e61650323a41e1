package batch

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ndlib/darkarchive/errcode"
	"github.com/ndlib/darkarchive/transfer"
	"github.com/ndlib/darkarchive/util"
)

// fakeEngine returns canned results keyed by source directory.
type fakeEngine struct {
	results map[string]transfer.Result
	fatal   map[string]error
	calls   []string
}

func (fe *fakeEngine) TransferDirectory(src, dst string, arrangement map[string]string) (transfer.Result, error) {
	fe.calls = append(fe.calls, src)
	if err := fe.fatal[src]; err != nil {
		return transfer.Result{}, err
	}
	return fe.results[src], nil
}

func tempSources(t *testing.T, names ...string) string {
	dir, err := ioutil.TempDir("", "batch")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		os.Mkdir(filepath.Join(dir, name), 0755)
	}
	return dir
}

func TestDriverRun(t *testing.T) {
	dir := tempSources(t, "a", "b", "c")
	defer os.RemoveAll(dir)
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	fe := &fakeEngine{results: map[string]transfer.Result{
		a: {FilesTransferred: 2, TotalFiles: 2, OK: true, Comment: "Success. 2 out of 2 files transferred"},
		b: {Comment: "No files found with extension 'tif'!"},
		c: {FilesTransferred: 1, TotalFiles: 1, OK: true},
	}}
	d := &Driver{Engine: fe, Log: util.Discard()}
	rows := []Row{
		NewRow(a, "/dst/a"),
		NewRow(filepath.Join(dir, "missing"), "/dst/missing"),
		NewRow(b, "/dst/b"),
		NewRow(c, "/dst/c"),
	}
	failures, err := d.Run(rows)
	if err != nil {
		t.Fatalf("Received %s", err)
	}
	if len(fe.calls) != 3 {
		t.Errorf("Received %v, expected 3 transfers", fe.calls)
	}
	if len(failures) != 2 {
		t.Fatalf("Received %v, expected 2 failures", failures)
	}
	if failures[0].Reason != "Source does not exist" {
		t.Errorf("Received %q", failures[0].Reason)
	}
	if failures[1].Row.Source != b || failures[1].Reason != "No files found with extension 'tif'!" {
		t.Errorf("Received %+v", failures[1])
	}
}

func TestDriverFatalStops(t *testing.T) {
	dir := tempSources(t, "a", "b", "c")
	defer os.RemoveAll(dir)
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	fatal := errcode.Fatal(errcode.CannotRemoveFile, os.ErrPermission)
	fe := &fakeEngine{
		results: map[string]transfer.Result{a: {OK: true, Comment: "ok"}},
		fatal:   map[string]error{b: fatal},
	}
	d := &Driver{Engine: fe, Log: util.Discard()}
	failures, err := d.Run([]Row{NewRow(a, "/dst/a"), NewRow(b, "/dst/b"), NewRow(c, "/dst/c")})
	var e *errcode.Error
	if !errors.As(err, &e) || e.Code != errcode.CannotRemoveFile {
		t.Errorf("Received %v, expected %s", err, errcode.CannotRemoveFile)
	}
	if len(fe.calls) != 2 {
		t.Errorf("Received %v, expected the run to stop", fe.calls)
	}

	// the stopping row and every row after it are reported
	var tests = []struct {
		source string
		reason string
	}{
		{b, fatal.Error()},
		{c, "Not processed: run stopped (" + errcode.CannotRemoveFile.String() + ")"},
	}
	if len(failures) != len(tests) {
		t.Fatalf("Received %v, expected %d failures", failures, len(tests))
	}
	for i, test := range tests {
		if failures[i].Row.Source != test.source || failures[i].Reason != test.reason {
			t.Errorf("Received %v, expected %s: %s", failures[i], test.source, test.reason)
		}
	}
}

func TestWriteReport(t *testing.T) {
	dir, err := ioutil.TempDir("", "report")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	now := time.Date(2020, 3, 4, 5, 6, 7, 0, time.Local)

	fname, err := WriteReport(dir, []string{"source", "destination"}, nil, now)
	if err != nil || fname != "" {
		t.Errorf("Received %q, %v, expected nothing written", fname, err)
	}

	header := []string{"source", "destination", "arrange:series"}
	failures := []Failure{
		{Row: Row{Fields: []string{"/a", "/b", "one"}}, Reason: "Source does not exist"},
		{Row: Row{Fields: []string{"/c"}}, Reason: "Not a valid input"},
	}
	fname, err = WriteReport(dir, header, failures, now)
	if err != nil {
		t.Fatalf("Received %s", err)
	}
	if filepath.Base(fname) != "transfer_errors_2020-03-04_050607.csv" {
		t.Errorf("Received %s", fname)
	}
	content, err := ioutil.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	expected := `source,destination,arrange:series,Comments
/a,/b,one,Source does not exist
/c,,,Not a valid input
`
	if string(content) != expected {
		t.Errorf("Received %q, expected %q", content, expected)
	}

	_, err = WriteReport(filepath.Join(dir, "missing"), header, failures, now)
	var e *errcode.Error
	if !errors.As(err, &e) || e.Code != errcode.CannotWriteReport {
		t.Errorf("Received %v, expected %s", err, errcode.CannotWriteReport)
	}
	if !strings.Contains(ReportName(now), "2020-03-04") {
		t.Errorf("Received %s", ReportName(now))
	}
}

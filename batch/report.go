package batch

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/ndlib/darkarchive/errcode"
)

// ReportName returns the error report file name for a run at the given time.
func ReportName(t time.Time) string {
	return "transfer_errors_" + t.Format("2006-01-02_150405") + ".csv"
}

// WriteReport writes the failed rows as CSV into dir, under the header with
// an extra "Comments" column, and returns the path of the file. Nothing is
// written if there are no failures, and the returned path is empty.
// Failure to write the file is an errcode.CannotWriteReport error.
func WriteReport(dir string, header []string, failures []Failure, now time.Time) (string, error) {
	if len(failures) == 0 {
		return "", nil
	}
	if len(header) == 0 {
		header = []string{sourceColumn, destinationColumn}
	}
	fname := filepath.Join(dir, ReportName(now))
	f, err := os.Create(fname)
	if err != nil {
		return "", errcode.Fatal(errcode.CannotWriteReport, err)
	}
	w := csv.NewWriter(f)
	w.Write(append(append([]string(nil), header...), "Comments"))
	for _, fail := range failures {
		// pad short rows so the reason sits under Comments
		line := append([]string(nil), fail.Row.Fields...)
		for len(line) < len(header) {
			line = append(line, "")
		}
		w.Write(append(line, fail.Reason))
	}
	w.Flush()
	err = w.Error()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fname, errcode.Fatal(errcode.CannotWriteReport, errors.Wrap(err, fname))
	}
	return fname, nil
}

package batch

import (
	"errors"
	"fmt"

	raven "github.com/getsentry/raven-go"

	"github.com/ndlib/darkarchive/errcode"
	"github.com/ndlib/darkarchive/fileutil"
	"github.com/ndlib/darkarchive/transfer"
	"github.com/ndlib/darkarchive/util"
)

// A Transferer accessions one directory. *transfer.Engine is one.
type Transferer interface {
	TransferDirectory(src, dst string, arrangement map[string]string) (transfer.Result, error)
}

// A Failure is a row which was not transferred completely.
type Failure struct {
	Row    Row
	Reason string
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s -> %s: %s", f.Row.Source, f.Row.Destination, f.Reason)
}

// A Driver runs rows through a Transferer one at a time.
type Driver struct {
	Engine Transferer
	Log    *util.Logger
}

// Run transfers every row in order and returns the rows which failed. A row
// failure does not stop the run. If the engine returns a fatal error Run
// stops at once and returns the error. The failures then also hold the row
// which stopped the run and every row after it.
func (d *Driver) Run(rows []Row) ([]Failure, error) {
	var failures []Failure
	d.Log.Printf("Number of directories to transfer: %d", len(rows))
	for i, row := range rows {
		d.Log.Printf("Arrangement Info Data: %v", row.Arrangement)
		if !fileutil.IsDir(row.Source) {
			d.Log.Printf("The source directory '%s' does not exist. Skipping to next transfer.", row.Source)
			failures = append(failures, d.failed(row, "Source does not exist"))
			continue
		}
		result, err := d.Engine.TransferDirectory(row.Source, row.Destination, row.Arrangement)
		if err != nil {
			var fatal *errcode.Error
			if errors.As(err, &fatal) {
				t := tags(row)
				t["code"] = fatal.Code.String()
				raven.CaptureErrorAndWait(fatal, t)
			}
			failures = append(failures, Failure{Row: row, Reason: err.Error()})
			for _, r := range rows[i+1:] {
				failures = append(failures, Failure{
					Row:    r,
					Reason: fmt.Sprintf("Not processed: run stopped (%s)", stopCode(err)),
				})
			}
			return failures, err
		}
		d.Log.Printf("%s", result.Comment)
		if !result.OK {
			failures = append(failures, d.failed(row, result.Comment))
		}
	}
	return failures, nil
}

func (d *Driver) failed(row Row, reason string) Failure {
	f := Failure{Row: row, Reason: reason}
	raven.CaptureError(f, tags(row))
	return f
}

func stopCode(err error) string {
	var fatal *errcode.Error
	if errors.As(err, &fatal) {
		return fatal.Code.String()
	}
	return "error"
}

func tags(row Row) map[string]string {
	return map[string]string{
		"source":      row.Source,
		"destination": row.Destination,
	}
}

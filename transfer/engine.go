/*
Package transfer moves the files of a source directory into the archive.

For each file the Engine runs the same sequence, one file at a time:

	identify → digest source → copy → rename → digest copy → compare
	   mismatch: remove copy, remove any record, stop this directory
	   match:    fixity check, serial number, accession, insert record,
	             and in move mode remove the source file

The ordering matters. The source digest is taken before anything is
copied. The record is inserted only after the copy has been verified, so a
crash part way through never leaves a record for an unverified file. In move
mode the source file is removed only once its record is committed, so a
crash before then leaves the source in place and the transfer can be run
again.

Errors come in two kinds. Most problems end the transfer of the current
directory and are described in the Result; the batch carries on with the
next directory. Problems which would leave the archive in a state nobody
knows about (a corrupt copy that cannot be removed, a record that cannot be
rolled back, a moved source file that cannot be removed) are returned as an
*errcode.Error and the process should stop.
*/
package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"

	"github.com/ndlib/darkarchive/errcode"
	"github.com/ndlib/darkarchive/fileutil"
	"github.com/ndlib/darkarchive/premis"
	"github.com/ndlib/darkarchive/records"
	"github.com/ndlib/darkarchive/util"
)

// Config holds the settings shared by every directory transfer. It is not
// changed once the Engine is in use.
type Config struct {
	// Extension selects the files to transfer, e.g. "tif". The value
	// fileutil.AnyExtension selects every file.
	Extension string

	// Move removes each source file once it has been accessioned.
	Move bool

	// Algorithm is the digest used for fixity. Defaults to MD5.
	Algorithm util.Algorithm
}

// Engine transfers directories into the archive.
type Engine struct {
	Config Config
	Store  records.Store
	Codec  premis.Codec
	Events *premis.EventBuilder
	Log    *util.Logger

	// called after a file is renamed and before it is verified
	afterRename func(path string)
}

// Result is the outcome of one directory transfer.
type Result struct {
	FilesTransferred int // files accessioned in this run
	TotalFiles       int // eligible files found in the source directory
	OK               bool
	Comment          string
}

// TransferDirectory accessions the eligible files in src into dst. The
// arrangement fields are added to every record.
//
// If dst does not exist it is created and numbering starts at 1. Otherwise
// numbering continues after the highest serial number recorded for src, and
// in copy mode that many files at the start of the sorted file list are
// taken to have been transferred already and are skipped.
//
// A non-nil error is always an *errcode.Error and means the process must
// stop. Every other problem is reported through the Result.
func (e *Engine) TransferDirectory(src, dst string, arrangement map[string]string) (Result, error) {
	var result Result

	// provenance records absolute paths
	src, err := filepath.Abs(src)
	if err != nil {
		return e.fail(result, "Error: %s", err)
	}
	dst, err = filepath.Abs(dst)
	if err != nil {
		return e.fail(result, "Error: %s", err)
	}

	created, err := fileutil.EnsureDir(dst)
	if err != nil {
		return e.fail(result, "%s '%s': %s", errcode.CannotCreateDestination.Message(), dst, err)
	}
	if same, err := sameDir(src, dst); err != nil {
		return e.fail(result, "Error: %s", err)
	} else if same {
		return e.fail(result, "Source '%s' and destination '%s' are the same directory.", src, dst)
	}
	var highest int
	if !created {
		highest, err = HighestSerial(e.Store, src)
		if err != nil {
			return e.fail(result, "Error: %s", err)
		}
	}
	e.Log.Printf("Previous highest file serial number: %d", highest)

	files, err := fileutil.List(src, e.Config.Extension)
	if err != nil {
		return e.fail(result, "Error: %s", err)
	}
	result.TotalFiles = len(files)
	if len(files) == 0 {
		return e.fail(result, "No files found with extension '%s'!", e.Config.Extension)
	}

	// In move mode the files already accessioned are gone from src.
	skip := highest
	if e.Config.Move {
		skip = 0
	}
	if skip > len(files) {
		skip = len(files)
	}

	serial := highest + 1
	for _, fname := range files[skip:] {
		err := e.transferFile(fname, dst, serial, arrangement)
		var fatal *errcode.Error
		if errors.As(err, &fatal) {
			e.Log.Errorf("%s", fatal)
			result.Comment = fatal.Error()
			return result, fatal
		} else if err != nil {
			return e.fail(result, "%s", err)
		}
		serial++
		result.FilesTransferred++
	}

	result.OK = true
	result.Comment = fmt.Sprintf("Success. %d out of %d files transferred", result.FilesTransferred, result.TotalFiles)
	return result, nil
}

func sameDir(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}

func (e *Engine) fail(result Result, format string, args ...interface{}) (Result, error) {
	result.OK = false
	result.Comment = fmt.Sprintf(format, args...)
	e.Log.Errorf("%s", result.Comment)
	return result, nil
}

// transferFile accessions a single file. A returned *errcode.Error is fatal;
// any other error ends the transfer of the directory.
func (e *Engine) transferFile(srcFile, dst string, serial int, arrangement map[string]string) error {
	alg := e.Config.Algorithm
	if alg == "" {
		alg = util.MD5
	}
	info, err := os.Stat(srcFile)
	if err != nil {
		return pkgerrors.Wrap(err, "Error")
	}
	name := filepath.Base(srcFile)
	formatName, formatVersion := premis.IdentifyFormat(name)
	rec := premis.InitRecord(premis.FileInfo{
		Name:          srcFile,
		Size:          info.Size(),
		FormatName:    formatName,
		FormatVersion: formatVersion,
	}, arrangement)
	rec.Append(e.Events.IdentifierAssignment(rec.ID))

	srcDigest, err := util.FileDigest(srcFile, alg)
	if err != nil {
		return pkgerrors.Wrap(err, "Error")
	}
	rec.Append(e.Events.Digest(srcDigest, string(alg), alg.Method()))
	rec.SetFixity(string(alg), srcDigest)

	prelim := filepath.Join(dst, name)
	unique := fileutil.UniqueName(dst, rec.ID, name)
	kind := premis.Replication
	verb := "Copying"
	if e.Config.Move {
		kind = premis.Migration
		verb = "Moving"
	}
	e.Log.Printf("%s '%s' from '%s' to '%s'", verb, name, filepath.Dir(srcFile), dst)

	copyDigest, err := fileutil.CopyFile(srcFile, prelim, alg)
	if errors.Is(err, os.ErrExist) {
		// not ours, leave it be
		return fmt.Errorf("A file named '%s' already exists in destination '%s'.", name, dst)
	} else if err != nil {
		if rerr := removeFile(prelim); rerr != nil {
			return rerr
		}
		return pkgerrors.Wrap(err, "Error")
	}
	if copyDigest != srcDigest {
		if rerr := removeFile(prelim); rerr != nil {
			return rerr
		}
		return fmt.Errorf("Source file '%s' changed while it was copied. Aborted transfers for remaining files in directory.", srcFile)
	}
	rec.Append(e.Events.Copy(kind, srcFile, prelim))

	if err := os.Rename(prelim, unique); err != nil {
		if rerr := removeFile(prelim); rerr != nil {
			return rerr
		}
		return pkgerrors.Wrap(err, "Error")
	}
	rec.Append(e.Events.Rename(prelim, unique))

	if e.afterRename != nil {
		e.afterRename(unique)
	}

	dstDigest, ok, err := util.VerifyFile(unique, alg, srcDigest)
	if err != nil {
		e.Log.Errorf("Cannot verify '%s': %s", unique, err)
		if ferr := e.discard(unique, rec.ID); ferr != nil {
			return ferr
		}
		return fmt.Errorf("Cannot verify '%s': %s. Aborted transfers for remaining files in directory.", unique, err)
	}
	if !ok {
		e.Log.Errorf("Checksum mismatch for '%s', and '%s'", srcFile, unique)
		if ferr := e.discard(unique, rec.ID); ferr != nil {
			return ferr
		}
		return fmt.Errorf("Checksum mismatch for '%s', and '%s'. Aborted transfers for remaining files in directory.", srcFile, unique)
	}

	rec.Append(e.Events.FixityCheck(premis.Success, dstDigest))
	rec.SetSerial(serial)
	rec.Append(e.Events.Accession())

	value, err := e.Codec.Marshal(rec)
	if err != nil {
		if rerr := removeFile(unique); rerr != nil {
			return rerr
		}
		return pkgerrors.Wrap(err, "Error")
	}
	id, err := e.Store.Insert(&records.Document{
		ID:           rec.ID,
		OriginalName: srcFile,
		Serial:       serial,
		Value:        value,
	})
	if err != nil {
		e.Log.Errorf("%s %s", errcode.CannotInsertRecord.Message(), err)
		if rerr := removeFile(unique); rerr != nil {
			return rerr
		}
		return fmt.Errorf("DB Insert operation not successful: %s", err)
	}
	if id != rec.ID {
		e.Log.Errorf("Unique ID %s returned by the DB does not match %s", id, rec.ID)
		if derr := e.Store.DeleteByID(id); derr != nil {
			return errcode.Fatal(errcode.CannotRemoveRecord, pkgerrors.Wrap(derr, id))
		}
		if rerr := removeFile(unique); rerr != nil {
			return rerr
		}
		return fmt.Errorf("DB Insert operation not successful. Unique ID returned by DB does not match '%s'.", rec.ID)
	}

	if e.Config.Move {
		if err := os.Remove(srcFile); err != nil {
			e.Log.Errorf("Cannot remove file '%s' from source '%s' after the move. Only a copy was made to the destination.",
				name, filepath.Dir(srcFile))
			return errcode.Fatal(errcode.CannotRemoveFile, err)
		}
	}
	return nil
}

// discard removes an archived file which failed verification, and any
// record stored under its id. Failures are fatal.
func (e *Engine) discard(path, id string) error {
	if err := removeFile(path); err != nil {
		return err
	}
	// no record should exist yet, but make sure of it
	if err := e.Store.DeleteByID(id); err != nil && !errors.Is(err, records.ErrNotFound) {
		return errcode.Fatal(errcode.CannotRemoveRecord, pkgerrors.Wrap(err, id))
	}
	return nil
}

// removeFile deletes a file the transfer left behind. A file that is
// already gone is fine. Any other failure is fatal.
func removeFile(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return errcode.Fatal(errcode.CannotRemoveFile, err)
}

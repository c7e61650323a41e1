// Package errcode lists the conditions which stop an accession run, and the
// process exit status for each of them.
package errcode

import (
	"fmt"
)

// A Code is a process exit status.
type Code int

// The exit codes. Their numbering follows the e01...e15 codes of the older
// accession scripts so existing job wrappers keep working.
const (
	InvalidArguments        Code = 1
	CannotOpenCSV           Code = 2
	CannotWriteReport       Code = 3
	CannotReadDBConfig      Code = 4
	InvalidHeader           Code = 5
	CannotConnectDB         Code = 6
	CannotAuthenticateDB    Code = 7
	CannotInsertRecord      Code = 8
	CannotRemoveFile        Code = 9
	CannotRemoveRecord      Code = 10
	CannotReadLabels        Code = 11
	InvalidLabels           Code = 12
	CannotReadVocab         Code = 13
	InvalidVocab            Code = 14
	CannotCreateDestination Code = 15
)

var messages = map[Code]string{
	InvalidArguments:        "Invalid (number of) arguments specified on the command line.",
	CannotOpenCSV:           "Cannot open the CSV batch file.",
	CannotWriteReport:       "Could not write CSV file for errors encountered during transfers.",
	CannotReadDBConfig:      "Cannot read the DB configuration file.",
	InvalidHeader:           "The header in the input CSV file is invalid.",
	CannotConnectDB:         "Cannot connect to the DB.",
	CannotAuthenticateDB:    "Cannot authenticate DB user specified.",
	CannotInsertRecord:      "Cannot insert record into the DB.",
	CannotRemoveFile:        "Cannot remove file from directory.",
	CannotRemoveRecord:      "Cannot remove record from DB.",
	CannotReadLabels:        "Cannot read the labels file.",
	InvalidLabels:           "The labels file is not valid.",
	CannotReadVocab:         "Cannot read the vocabulary file.",
	InvalidVocab:            "The vocabulary file is not valid.",
	CannotCreateDestination: "Cannot create destination directory.",
}

// Message returns the description of the condition.
func (c Code) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return fmt.Sprintf("exit code %d", int(c))
}

// String returns the code in the eNN form used by the older scripts.
func (c Code) String() string {
	return fmt.Sprintf("e%02d", int(c))
}

// An Error is a condition which must end the process. Continuing after one
// could silently lose or duplicate archived data.
type Error struct {
	Code Code
	Err  error
}

// Fatal returns an Error for the given code wrapping err.
func Fatal(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code.String() + ": " + e.Code.Message()
	}
	return e.Code.String() + ": " + e.Code.Message() + " " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause lets github.com/pkg/errors find the underlying error.
func (e *Error) Cause() error {
	return e.Err
}

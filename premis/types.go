package premis

import (
	"time"
)

// Constants recorded on every object and event.
const (
	// IDType is the kind of identifier given to objects and events.
	IDType = "UUID"

	// AgentType identifies the linking agent of every event as a program.
	AgentType = "program"

	// IDAlgorithm and IDMethod describe how identifiers are generated.
	IDAlgorithm = "UUID v4"
	IDMethod    = "github.com/google/uuid.New()"

	// TimeLayout is an ISO-8601 profile with a numeric UTC offset.
	TimeLayout = "2006-01-02T15:04:05-07:00"
)

// A Record is the provenance information for one accessioned file.
// The ID is assigned when the record is created and never changes. It is
// also the file name stem of the file inside the archive and the primary key
// of the record in the database.
type Record struct {
	ID           string
	Admin        Admin
	Preservation Preservation
}

// Admin is the administrative section of a record.
type Admin struct {
	// Arrangement holds the arrangement fields given for the batch row.
	// Fields with empty values are never present.
	Arrangement map[string]string

	// SerialNumber is the position of the file inside its source
	// directory. It is the empty string until the file is accessioned.
	SerialNumber string
}

// Preservation is the preservation section of a record.
type Preservation struct {
	Object Object
	Events []Event
}

// Object describes the file being preserved.
type Object struct {
	IDType        string
	IDValue       string
	Category      string
	Fixity        Fixity
	Size          int64
	FormatName    string
	FormatVersion string
	OriginalName  string
}

// Fixity is a digest together with the algorithm used to compute it.
// Both are empty until the source file is checksummed.
type Fixity struct {
	Algorithm string
	Digest    string
}

// EventType enumerates the kinds of provenance events.
type EventType int

const (
	UnknownEvent EventType = iota
	IdentifierAssignment
	MessageDigestCalculation
	Replication
	Migration
	FilenameChange
	FixityCheck
	Accession
	MetadataExtraction
	MetadataModification
)

func (t EventType) String() string {
	switch t {
	case IdentifierAssignment:
		return "IdentifierAssignment"
	case MessageDigestCalculation:
		return "MessageDigestCalculation"
	case Replication:
		return "Replication"
	case Migration:
		return "Migration"
	case FilenameChange:
		return "FilenameChange"
	case FixityCheck:
		return "FixityCheck"
	case Accession:
		return "Accession"
	case MetadataExtraction:
		return "MetadataExtraction"
	case MetadataModification:
		return "MetadataModification"
	}
	return "Unknown"
}

// Outcome is the result of an event.
type Outcome int

const (
	Success Outcome = iota
	Failure
)

func (o Outcome) String() string {
	if o == Failure {
		return "Failure"
	}
	return "Success"
}

// DetailKey names a piece of event detail. Which keys are present depends on
// the event type.
type DetailKey int

const (
	DetailAlgorithm DetailKey = iota
	DetailLanguage
	DetailMethod
	DetailAssignedID
	DetailDigest
	DetailSource
	DetailDestination
	DetailBefore
	DetailAfter
	DetailExtracted
)

// detailKeys lists every DetailKey in the order they are written out.
var detailKeys = []DetailKey{
	DetailAlgorithm,
	DetailLanguage,
	DetailMethod,
	DetailAssignedID,
	DetailDigest,
	DetailSource,
	DetailDestination,
	DetailBefore,
	DetailAfter,
	DetailExtracted,
}

// Agent is the program that performed an event.
type Agent struct {
	Type  string
	Value string
}

// An Event is one action taken on an object.
type Event struct {
	ID      string
	Type    EventType
	Time    time.Time
	Detail  map[DetailKey]string
	Outcome Outcome
	Agent   Agent
}

// Timestamp returns the event time in the archive's timestamp format.
func (e Event) Timestamp() string {
	return e.Time.Format(TimeLayout)
}

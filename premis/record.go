package premis

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ObjectCategory is the category given to every object. It is translated
// through the vocabulary when a record is encoded.
const ObjectCategory = "file"

// NewID returns a new random (version 4) UUID as a string. These are usable
// as file name stems and as database keys.
func NewID() string {
	return uuid.New().String()
}

// FileInfo is the information about a file known before it is transferred.
type FileInfo struct {
	Name          string // full path of the source file
	Size          int64
	FormatName    string
	FormatVersion string
}

// IdentifyFormat guesses the format of a file from its name. The format name
// is the upper cased extension. No version is determined.
func IdentifyFormat(name string) (formatName, formatVersion string) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return strings.ToUpper(ext), ""
}

// InitRecord returns a new record for the given file with a freshly
// generated ID and no events. Arrangement fields with empty values are
// dropped; the passed map is not modified.
func InitRecord(info FileInfo, arrangement map[string]string) *Record {
	id := NewID()
	arr := make(map[string]string, len(arrangement))
	for k, v := range arrangement {
		if v == "" {
			continue
		}
		arr[k] = v
	}
	return &Record{
		ID: id,
		Admin: Admin{
			Arrangement: arr,
		},
		Preservation: Preservation{
			Object: Object{
				IDType:        IDType,
				IDValue:       id,
				Category:      ObjectCategory,
				Size:          info.Size,
				FormatName:    info.FormatName,
				FormatVersion: info.FormatVersion,
				OriginalName:  info.Name,
			},
			Events: []Event{},
		},
	}
}

// Append adds an event to the end of the record's event list.
func (r *Record) Append(e Event) {
	r.Preservation.Events = append(r.Preservation.Events, e)
}

// SetFixity records the digest of the object.
func (r *Record) SetFixity(algorithm, digest string) {
	r.Preservation.Object.Fixity = Fixity{Algorithm: algorithm, Digest: digest}
}

// SetSerial sets the serial number of the record.
func (r *Record) SetSerial(n int) {
	r.Admin.SerialNumber = strconv.Itoa(n)
}

// Serial returns the serial number as an integer. It returns 0 if no serial
// number has been assigned.
func (r *Record) Serial() int {
	n, err := strconv.Atoi(r.Admin.SerialNumber)
	if err != nil {
		return 0
	}
	return n
}

// Count returns the number of events of the given type.
func (r *Record) Count(t EventType) int {
	var n int
	for _, e := range r.Preservation.Events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// EventTypes returns the types of the record's events, in order.
func (r *Record) EventTypes() []EventType {
	result := make([]EventType, len(r.Preservation.Events))
	for i, e := range r.Preservation.Events {
		result[i] = e.Type
	}
	return result
}

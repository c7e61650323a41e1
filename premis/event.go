package premis

import (
	"runtime"

	"github.com/facebookgo/clock"
)

// An EventBuilder makes provenance events. Every event it makes carries the
// same linking agent and is stamped with the time given by Clock.
//
// The builder methods do not touch any record; the caller appends the
// returned event where it belongs.
type EventBuilder struct {
	Clock    clock.Clock
	Agent    Agent
	Language string // implementation language and version
}

// NewEventBuilder returns a builder using the wall clock. The program name
// and version become the linking agent of every event.
func NewEventBuilder(program, version string) *EventBuilder {
	return &EventBuilder{
		Clock: clock.New(),
		Agent: Agent{
			Type:  AgentType,
			Value: program + " " + version + "; " + runtime.Version(),
		},
		Language: runtime.Version(),
	}
}

func (b *EventBuilder) event(t EventType, outcome Outcome, detail map[DetailKey]string) Event {
	return Event{
		ID:      NewID(),
		Type:    t,
		Time:    b.Clock.Now(),
		Detail:  detail,
		Outcome: outcome,
		Agent:   b.Agent,
	}
}

// IdentifierAssignment records that id was given to an object.
func (b *EventBuilder) IdentifierAssignment(id string) Event {
	return b.event(IdentifierAssignment, Success, map[DetailKey]string{
		DetailAlgorithm:  IDAlgorithm,
		DetailLanguage:   b.Language,
		DetailMethod:     IDMethod,
		DetailAssignedID: id,
	})
}

// Digest records the computation of a message digest. The method describes
// the implementation which computed it.
func (b *EventBuilder) Digest(digest, algorithm, method string) Event {
	return b.event(MessageDigestCalculation, Success, map[DetailKey]string{
		DetailAlgorithm: algorithm,
		DetailLanguage:  b.Language,
		DetailMethod:    method,
		DetailDigest:    digest,
	})
}

// Copy records a file being copied from src to dst. The kind should be
// either Replication, when the source is kept, or Migration, when the source
// is removed afterwards.
func (b *EventBuilder) Copy(kind EventType, src, dst string) Event {
	if kind != Migration {
		kind = Replication
	}
	return b.event(kind, Success, map[DetailKey]string{
		DetailSource:      src,
		DetailDestination: dst,
	})
}

// Rename records a file name change.
func (b *EventBuilder) Rename(oldPath, newPath string) Event {
	return b.event(FilenameChange, Success, map[DetailKey]string{
		DetailSource:      oldPath,
		DetailDestination: newPath,
	})
}

// FixityCheck records the verification of a digest. The accession
// workflow only records successful checks; a later re-verification may
// record a Failure.
func (b *EventBuilder) FixityCheck(outcome Outcome, digest string) Event {
	return b.event(FixityCheck, outcome, map[DetailKey]string{
		DetailDigest: digest,
	})
}

// Accession records that the object has become part of the archive.
func (b *EventBuilder) Accession() Event {
	return b.event(Accession, Success, nil)
}

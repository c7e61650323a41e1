package transfer

import (
	"github.com/pkg/errors"

	"github.com/ndlib/darkarchive/premis"
	"github.com/ndlib/darkarchive/records"
	"github.com/ndlib/darkarchive/util"
)

// Reverify recomputes the digest of the archived copy of record id, found
// at path, and compares it with the digest taken at accession. A
// FixityCheck event with the outcome is appended to the stored record.
//
// A file which cannot be read is recorded as a failed check, and the read
// error is returned.
func Reverify(s records.Store, codec premis.Codec, events *premis.EventBuilder, id, path string) (bool, error) {
	doc, err := s.FindByID(id)
	if err != nil {
		return false, errors.Wrap(err, id)
	}
	rec, err := codec.Decode(doc.Value)
	if err != nil {
		return false, errors.Wrap(err, id)
	}
	fixity := rec.Preservation.Object.Fixity
	alg, err := util.ParseAlgorithm(fixity.Algorithm)
	if err != nil {
		return false, errors.Wrap(err, id)
	}

	digest, ok, readErr := util.VerifyFile(path, alg, fixity.Digest)
	outcome := premis.Success
	if readErr != nil || !ok {
		outcome = premis.Failure
	}
	ev := events.FixityCheck(outcome, digest)
	fields, err := codec.AppendEvent(doc.Value, &ev)
	if err != nil {
		return false, errors.Wrap(err, id)
	}
	if err := s.UpdateByID(id, fields); err != nil {
		return false, errors.Wrap(err, id)
	}
	return outcome == premis.Success, readErr
}

package util

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// An Algorithm names a message digest. The names are the ones written into
// provenance records, so they should not be changed once records exist.
type Algorithm string

const (
	MD5    Algorithm = "MD5"
	SHA256 Algorithm = "SHA-256"
)

// ErrUnknownAlgorithm is returned when a digest name is not recognized.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// ParseAlgorithm maps a configuration string onto an Algorithm. The
// comparison ignores case and dashes, so "md5", "sha256" and "SHA-256" all
// work. The empty string means MD5.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.Replace(strings.ToLower(s), "-", "", -1) {
	case "", "md5":
		return MD5, nil
	case "sha256":
		return SHA256, nil
	}
	return "", errors.Wrap(ErrUnknownAlgorithm, s)
}

// Method returns a description of the implementation computing the digest.
// It is recorded alongside digest calculation events.
func (a Algorithm) Method() string {
	switch a {
	case SHA256:
		return "crypto/sha256"
	default:
		return "crypto/md5"
	}
}

// A HashWriter wraps an io.Writer and also calculates the MD5 and SHA256
// hashes of the bytes written.
type HashWriter struct {
	io.Writer // our io.MultiWriter
	md5       hash.Hash
	sha256    hash.Hash
}

// NewHashWriter returns a HashWriter wrapping w.
func NewHashWriter(w io.Writer) *HashWriter {
	hw := &HashWriter{
		md5:    md5.New(),
		sha256: sha256.New(),
	}
	hw.Writer = io.MultiWriter(w, hw.md5, hw.sha256)
	return hw
}

// NewHashWriterPlain returns a HashWriter that does not wrap an output
// stream. It just computes the checksums of the data written to it.
func NewHashWriterPlain() *HashWriter {
	hw := &HashWriter{
		md5:    md5.New(),
		sha256: sha256.New(),
	}
	hw.Writer = io.MultiWriter(hw.md5, hw.sha256)
	return hw
}

// Sum returns the lower case hex encoding of the given digest of everything
// written so far.
func (hw *HashWriter) Sum(a Algorithm) string {
	var h hash.Hash
	switch a {
	case SHA256:
		h = hw.sha256
	default:
		h = hw.md5
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Check compares the digest of everything written so far against goal,
// which is a hex string. Case is ignored. An empty goal never matches.
func (hw *HashWriter) Check(a Algorithm, goal string) (string, bool) {
	computed := hw.Sum(a)
	return computed, goal != "" && strings.EqualFold(goal, computed)
}

// FileDigest reads the whole file at path and returns its hex digest.
// Identical bytes always give identical digests.
func FileDigest(path string, a Algorithm) (string, error) {
	hw, err := hashFile(path)
	if err != nil {
		return "", err
	}
	return hw.Sum(a), nil
}

// VerifyFile recomputes the digest of the file at path and compares it with
// goal. The computed digest is returned in either case.
func VerifyFile(path string, a Algorithm, goal string) (string, bool, error) {
	hw, err := hashFile(path)
	if err != nil {
		return "", false, err
	}
	computed, ok := hw.Check(a, goal)
	return computed, ok, nil
}

func hashFile(path string) (*HashWriter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "digest")
	}
	defer f.Close()
	hw := NewHashWriterPlain()
	if _, err := io.Copy(hw, f); err != nil {
		return nil, errors.Wrapf(err, "digest %s", path)
	}
	return hw, nil
}

package transfer

import (
	"github.com/pkg/errors"

	"github.com/ndlib/darkarchive/records"
)

// HighestSerial returns the high-water mark of serial numbers already
// given to files from srcDir, or 0 if no file from srcDir has been
// accessioned. The next file gets the returned value plus one.
//
// The high-water mark is not locked. Two processes accessioning the same
// source directory at once will hand out the same serial numbers.
func HighestSerial(s records.Store, srcDir string) (int, error) {
	n, err := s.HighestSerial(srcDir)
	if err != nil {
		return 0, errors.Wrap(err, "resolve serial number")
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

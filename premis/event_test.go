package premis

import (
	"testing"
	"time"

	"github.com/facebookgo/clock"
)

func newTestBuilder() (*EventBuilder, *clock.Mock) {
	c := clock.NewMock()
	c.Add(47 * 365 * 24 * time.Hour)
	b := NewEventBuilder("accession", "test")
	b.Clock = c
	return b, c
}

func TestEventBuilder(t *testing.T) {
	b, c := newTestBuilder()

	var table = []struct {
		e       Event
		t       EventType
		details map[DetailKey]string
	}{
		{b.IdentifierAssignment("abc"), IdentifierAssignment,
			map[DetailKey]string{DetailAssignedID: "abc", DetailAlgorithm: IDAlgorithm}},
		{b.Digest("d41d8cd9", "MD5", "crypto/md5"), MessageDigestCalculation,
			map[DetailKey]string{DetailDigest: "d41d8cd9", DetailAlgorithm: "MD5", DetailMethod: "crypto/md5"}},
		{b.Copy(Replication, "/a/x", "/b/x"), Replication,
			map[DetailKey]string{DetailSource: "/a/x", DetailDestination: "/b/x"}},
		{b.Copy(Migration, "/a/x", "/b/x"), Migration,
			map[DetailKey]string{DetailSource: "/a/x", DetailDestination: "/b/x"}},
		{b.Copy(Accession, "/a/x", "/b/x"), Replication, nil},
		{b.Rename("/b/x", "/b/abc.x"), FilenameChange,
			map[DetailKey]string{DetailSource: "/b/x", DetailDestination: "/b/abc.x"}},
		{b.FixityCheck(Success, "d41d8cd9"), FixityCheck,
			map[DetailKey]string{DetailDigest: "d41d8cd9"}},
		{b.Accession(), Accession, nil},
	}
	seen := make(map[string]bool)
	for _, tab := range table {
		if tab.e.Type != tab.t {
			t.Errorf("Received type %s, expected %s", tab.e.Type, tab.t)
		}
		if tab.e.Outcome != Success {
			t.Errorf("%s: Received outcome %s, expected Success", tab.t, tab.e.Outcome)
		}
		if !tab.e.Time.Equal(c.Now()) {
			t.Errorf("%s: Received time %v, expected %v", tab.t, tab.e.Time, c.Now())
		}
		if tab.e.Agent != b.Agent || tab.e.Agent.Type != AgentType {
			t.Errorf("%s: Received agent %v, expected %v", tab.t, tab.e.Agent, b.Agent)
		}
		if seen[tab.e.ID] {
			t.Errorf("%s: event id %s reused", tab.t, tab.e.ID)
		}
		seen[tab.e.ID] = true
		for k, v := range tab.details {
			if tab.e.Detail[k] != v {
				t.Errorf("%s: detail %d: Received %q, expected %q", tab.t, k, tab.e.Detail[k], v)
			}
		}
	}

	failed := b.FixityCheck(Failure, "ffff")
	if failed.Outcome != Failure {
		t.Errorf("Received outcome %s, expected Failure", failed.Outcome)
	}
}

func TestTimestamp(t *testing.T) {
	zone := time.FixedZone("CDT", -5*60*60)
	e := Event{Time: time.Date(2017, 6, 1, 7, 30, 5, 999, zone)}
	const goal = "2017-06-01T07:30:05-05:00"
	if e.Timestamp() != goal {
		t.Errorf("Received %s, expected %s", e.Timestamp(), goal)
	}
}

package transfer

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ndlib/darkarchive/premis"
	"github.com/ndlib/darkarchive/records"
)

func TestReverify(t *testing.T) {
	src := makeSource(t, map[string]string{"a.tif": "hello"})
	defer os.RemoveAll(src)
	dst := tempDest(t)
	defer os.RemoveAll(dst)

	s := records.NewMemory()
	e := newTestEngine(t, s, Config{Extension: "tif"})
	if _, err := e.TransferDirectory(src, dst, nil); err != nil {
		t.Fatalf("Received %s", err)
	}
	id := s.List()[0].ID
	archived := filepath.Join(dst, id+".tif")

	var tests = []struct {
		damage   bool
		expected bool
		outcomes []premis.Outcome
	}{
		{false, true, []premis.Outcome{premis.Success, premis.Success}},
		{true, false, []premis.Outcome{premis.Success, premis.Success, premis.Failure}},
	}
	for _, test := range tests {
		if test.damage {
			ioutil.WriteFile(archived, []byte("damaged"), 0644)
		}
		ok, err := Reverify(s, e.Codec, e.Events, id, archived)
		if err != nil {
			t.Fatalf("Received %s", err)
		}
		if ok != test.expected {
			t.Errorf("Received %v, expected %v", ok, test.expected)
		}
		doc, _ := s.FindByID(id)
		rec, err := e.Codec.Decode(doc.Value)
		if err != nil {
			t.Fatalf("Received %s", err)
		}
		var outcomes []premis.Outcome
		for _, ev := range rec.Preservation.Events {
			if ev.Type == premis.FixityCheck {
				outcomes = append(outcomes, ev.Outcome)
			}
		}
		if len(outcomes) != len(test.outcomes) {
			t.Fatalf("Received %v, expected %v", outcomes, test.outcomes)
		}
		for i := range outcomes {
			if outcomes[i] != test.outcomes[i] {
				t.Errorf("Received %v, expected %v", outcomes, test.outcomes)
			}
		}
		// the rest of the record is untouched
		if rec.Serial() != 1 || rec.Count(premis.Accession) != 1 {
			t.Errorf("Received serial %d, %d accessions", rec.Serial(), rec.Count(premis.Accession))
		}
	}

	os.Remove(archived)
	ok, err := Reverify(s, e.Codec, e.Events, id, archived)
	if ok || err == nil {
		t.Errorf("Received %v, %v, expected a failed check", ok, err)
	}
	if _, err := Reverify(s, e.Codec, e.Events, "no-such-id", archived); err == nil {
		t.Errorf("Received no error for an unknown id")
	}
}

func TestReverifyKeepsStoredEvents(t *testing.T) {
	src := makeSource(t, map[string]string{"a.tif": "hello"})
	defer os.RemoveAll(src)
	dst := tempDest(t)
	defer os.RemoveAll(dst)

	s := records.NewMemory()
	e := newTestEngine(t, s, Config{Extension: "tif"})
	if _, err := e.TransferDirectory(src, dst, nil); err != nil {
		t.Fatalf("Received %s", err)
	}
	id := s.List()[0].ID
	archived := filepath.Join(dst, id+".tif")
	l := e.Codec.Labels

	// an event written by some other tool, with a term and a detail key
	// this codec does not know
	foreign := map[string]interface{}{
		l.EventEntity: map[string]interface{}{
			l.EventType:     "Virus Check",
			l.EventDateTime: "2019-01-02T03:04:05-04:00",
			"scanner":       "clamav 0.102",
			l.EventDetailParent: []interface{}{
				map[string]interface{}{"note": "clean"},
			},
		},
	}
	doc, _ := s.FindByID(id)
	stored := storedEvents(t, doc.Value, e)
	stored = append(stored, foreign)
	err := s.UpdateByID(id, map[string]interface{}{
		l.PresEntity: map[string]interface{}{l.EventParentEntity: stored},
	})
	if err != nil {
		t.Fatalf("Received %s", err)
	}
	doc, _ = s.FindByID(id)
	before := storedEvents(t, doc.Value, e)

	if _, err := Reverify(s, e.Codec, e.Events, id, archived); err != nil {
		t.Fatalf("Received %s", err)
	}
	doc, _ = s.FindByID(id)
	after := storedEvents(t, doc.Value, e)
	if len(after) != len(before)+1 {
		t.Fatalf("Received %d events, expected %d", len(after), len(before)+1)
	}
	for i := range before {
		if !reflect.DeepEqual(after[i], before[i]) {
			t.Errorf("Received %v, expected %v", after[i], before[i])
		}
	}
	rec, err := e.Codec.Decode(doc.Value)
	if err != nil {
		t.Fatalf("Received %s", err)
	}
	last := rec.Preservation.Events[len(rec.Preservation.Events)-1]
	if last.Type != premis.FixityCheck || last.Outcome != premis.Success {
		t.Errorf("Received %v %v, expected %v %v", last.Type, last.Outcome, premis.FixityCheck, premis.Success)
	}
}

func storedEvents(t *testing.T, data []byte, e *Engine) []interface{} {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Received %s", err)
	}
	pres := doc[e.Codec.Labels.PresEntity].(map[string]interface{})
	return pres[e.Codec.Labels.EventParentEntity].([]interface{})
}

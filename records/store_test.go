package records

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
)

// storeTests runs the behaviour every Store must share.
func storeTests(t *testing.T, s Store) {
	docs := []*Document{
		{ID: "aaa", OriginalName: "/src/one/a.tif", Serial: 1, Value: []byte(`{"_id":"aaa"}`)},
		{ID: "bbb", OriginalName: "/src/one/b.tif", Serial: 2, Value: []byte(`{"_id":"bbb"}`)},
		{ID: "ccc", OriginalName: "/src/one2/c.tif", Serial: 7, Value: []byte(`{"_id":"ccc"}`)},
	}
	for _, d := range docs {
		id, err := s.Insert(d)
		if err != nil {
			t.Fatalf("Insert %s: %s", d.ID, err)
		}
		if id != d.ID {
			t.Errorf("Received id %s, expected %s", id, d.ID)
		}
	}
	if _, err := s.Insert(docs[0]); errors.Cause(err) != ErrDuplicate {
		t.Errorf("Received %v, expected ErrDuplicate", err)
	}

	var table = []struct {
		dir    string
		serial int
	}{
		{"/src/one", 2},
		{"/src/one2", 7},
		{"/src", 0},
		{"/elsewhere", 0},
	}
	for _, tab := range table {
		n, err := s.HighestSerial(tab.dir)
		if err != nil {
			t.Errorf("HighestSerial %s: %s", tab.dir, err)
		}
		if n != tab.serial {
			t.Errorf("Input: %s. Received %d, expected %d", tab.dir, n, tab.serial)
		}
	}

	d, err := s.FindByID("bbb")
	if err != nil {
		t.Fatalf("FindByID: %s", err)
	}
	if d.OriginalName != "/src/one/b.tif" || d.Serial != 2 || string(d.Value) != `{"_id":"bbb"}` {
		t.Errorf("Received %+v", d)
	}
	if _, err := s.FindByID("zzz"); err != ErrNotFound {
		t.Errorf("Received %v, expected ErrNotFound", err)
	}

	err = s.UpdateByID("aaa", map[string]interface{}{
		"premis": map[string]interface{}{"eventList": []interface{}{"x"}},
	})
	if err != nil {
		t.Fatalf("UpdateByID: %s", err)
	}
	d, _ = s.FindByID("aaa")
	var value map[string]interface{}
	json.Unmarshal(d.Value, &value)
	if value["_id"] != "aaa" || value["premis"] == nil {
		t.Errorf("Received %s", d.Value)
	}
	if err := s.UpdateByID("zzz", nil); err != ErrNotFound {
		t.Errorf("Received %v, expected ErrNotFound", err)
	}

	if err := s.DeleteByID("aaa"); err != nil {
		t.Errorf("DeleteByID: %s", err)
	}
	if err := s.DeleteByID("aaa"); err != ErrNotFound {
		t.Errorf("Received %v, expected ErrNotFound", err)
	}
	n, _ := s.HighestSerial("/src/one")
	if n != 2 {
		t.Errorf("Received %d, expected 2", n)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	storeTests(t, s)
	if s.Len() != 2 || len(s.List()) != 2 {
		t.Errorf("Received %d documents, expected 2", s.Len())
	}
}

func TestQlStore(t *testing.T) {
	s, err := NewQlStore("memory", "qltest")
	if err != nil {
		t.Fatalf("Received %s", err)
	}
	defer s.Close()
	storeTests(t, s)
}

func TestBadCollection(t *testing.T) {
	var table = []struct {
		name string
		ok   bool
	}{
		{"", true},
		{"records", true},
		{"records_2017", true},
		{"records; DROP TABLE x", false},
		{"9lives", false},
	}
	for _, tab := range table {
		_, err := checkCollection(tab.name)
		if (err == nil) != tab.ok {
			t.Errorf("Input: %q. Received %v", tab.name, err)
		}
	}
}

func TestMerge(t *testing.T) {
	value := []byte(`{"a": {"b": 1, "c": 2}, "d": [1, 2]}`)
	merged, err := mergeValue(value, map[string]interface{}{
		"a": map[string]interface{}{"c": 3, "e": 4},
		"d": []interface{}{5},
	})
	if err != nil {
		t.Fatal(err)
	}
	const goal = `{"a":{"b":1,"c":3,"e":4},"d":[5]}`
	if string(merged) != goal {
		t.Errorf("Received %s, expected %s", merged, goal)
	}
}

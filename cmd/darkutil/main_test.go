package main

import (
	"bytes"
	"testing"
)

func TestPrintJSON(t *testing.T) {
	var tests = []struct {
		input    string
		expected string
	}{
		{`{"a":1}`, "{\n  \"a\": 1\n}\n"},
		{`{"a":1`, "{\"a\":1\n"},
		{`not json`, "not json\n"},
	}
	for _, test := range tests {
		var out bytes.Buffer
		printjson(&out, []byte(test.input))
		if out.String() != test.expected {
			t.Errorf("Received %q, expected %q", out.String(), test.expected)
		}
	}
}

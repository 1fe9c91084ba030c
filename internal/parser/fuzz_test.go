package parser

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// FuzzParse feeds arbitrary bytes to Parse.
// It must never panic, and anything it accepts must pass Validate.
// Run with: go test -fuzz=FuzzParse -fuzztime=60s ./internal/parser
func FuzzParse(f *testing.F) {
	var le, be bytes.Buffer
	if err := Encode(&le, testFile(binary.LittleEndian)); err != nil {
		f.Fatal(err)
	}
	if err := Encode(&be, testFile(binary.BigEndian)); err != nil {
		f.Fatal(err)
	}

	seeds := [][]byte{
		le.Bytes(),
		be.Bytes(),
		le.Bytes()[:RecordSize*11],
		[]byte("NUM_OREC\x0b\x00\x00\x00\x00\x00\x00\x00"),
		{},
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		file, err := Parse(bytes.NewReader(data))
		if err != nil {
			return
		}
		if err := Validate(file); err != nil {
			t.Errorf("Parse accepted a file that fails Validate: %v", err)
		}
	})
}

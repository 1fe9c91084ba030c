package parser

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encode writes f as an NTv2 file in f.ByteOrder (little endian when unset).
//
// Subgrid headers are always written with 11 records; extra records present
// in the source file are not preserved. Text values longer than eight bytes
// are truncated. Encode does not run Validate, so it can produce files that
// Parse rejects.
func Encode(w io.Writer, f *File) error {
	order := f.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	e := &encoder{w: bufio.NewWriter(w), order: order}

	h := &f.Header
	e.int32("NUM_OREC", OverviewRecords)
	e.int32("NUM_SREC", SubFileRecords)
	e.int32("NUM_FILE", int32(len(f.SubFiles)))
	e.text("GS_TYPE", h.GridShiftType)
	e.text("VERSION", h.Version)
	e.text("SYSTEM_F", h.SystemFrom)
	e.text("SYSTEM_T", h.SystemTo)
	e.float("MAJOR_F", h.MajorFrom)
	e.float("MINOR_F", h.MinorFrom)
	e.float("MAJOR_T", h.MajorTo)
	e.float("MINOR_T", h.MinorTo)

	for i := range f.SubFiles {
		s := &f.SubFiles[i].Header
		parent := s.Parent
		if s.IsRoot() {
			parent = NoParent
		}
		e.text("SUB_NAME", s.Name)
		e.text("PARENT", parent)
		e.text("CREATED", s.Created)
		e.text("UPDATED", s.Updated)
		e.float("S_LAT", s.SouthLat)
		e.float("N_LAT", s.NorthLat)
		e.float("E_LONG", s.EastLong)
		e.float("W_LONG", s.WestLong)
		e.float("LAT_INC", s.LatInc)
		e.float("LONG_INC", s.LongInc)
		e.int32("GS_COUNT", s.Count)

		for _, r := range f.SubFiles[i].Records {
			e.record(r)
		}
	}

	e.key(endKeyword)
	e.write(make([]byte, KeySize))

	if e.err != nil {
		return fmt.Errorf("encode: %w", e.err)
	}
	return e.w.Flush()
}

// encoder remembers the first write error so callers can emit records
// without checking each one.
type encoder struct {
	w     *bufio.Writer
	order binary.ByteOrder
	buf   [RecordSize]byte
	err   error
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) key(k string) {
	var b [KeySize]byte
	pad(b[:], k)
	e.write(b[:])
}

func (e *encoder) int32(k string, v int32) {
	e.key(k)
	var b [KeySize]byte
	e.order.PutUint32(b[:4], uint32(v))
	e.write(b[:])
}

func (e *encoder) float(k string, v float64) {
	e.key(k)
	var b [KeySize]byte
	e.order.PutUint64(b[:], math.Float64bits(v))
	e.write(b[:])
}

func (e *encoder) text(k, v string) {
	e.key(k)
	var b [KeySize]byte
	pad(b[:], v)
	e.write(b[:])
}

func (e *encoder) record(r Record) {
	e.order.PutUint32(e.buf[0:4], math.Float32bits(r.LatShift))
	e.order.PutUint32(e.buf[4:8], math.Float32bits(r.LonShift))
	e.order.PutUint32(e.buf[8:12], math.Float32bits(r.LatAccuracy))
	e.order.PutUint32(e.buf[12:16], math.Float32bits(r.LonAccuracy))
	e.write(e.buf[:])
}

// pad copies s into b and fills the remainder with spaces.
func pad(b []byte, s string) {
	n := copy(b, s)
	for i := n; i < len(b); i++ {
		b[i] = ' '
	}
}

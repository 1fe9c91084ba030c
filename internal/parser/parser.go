package parser

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Limits applied before any allocation sized from header values.
const (
	MaxSubFiles = 1 << 16
	MaxNodes    = 1 << 24
)

// recordChunk caps the initial record slice; it grows only as records are
// actually read, so GS_COUNT alone cannot force a large allocation.
const recordChunk = 1 << 12

var overviewKeys = [OverviewRecords]string{
	"NUM_OREC", "NUM_SREC", "NUM_FILE", "GS_TYPE", "VERSION",
	"SYSTEM_F", "SYSTEM_T", "MAJOR_F", "MINOR_F", "MAJOR_T", "MINOR_T",
}

var subFileKeys = [SubFileRecords]string{
	"SUB_NAME", "PARENT", "CREATED", "UPDATED", "S_LAT", "N_LAT",
	"E_LONG", "W_LONG", "LAT_INC", "LONG_INC", "GS_COUNT",
}

// ParseFile opens and decodes an NTv2 file from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes an NTv2 grid shift file.
//
// The byte order is detected from the NUM_OREC record, which always holds 11.
// The trailing END record is optional when the stream ends right after the
// last subgrid. Any structural problem is reported as *FormatError and no
// partial file is returned.
func Parse(r io.Reader) (*File, error) {
	d := &decoder{r: bufio.NewReader(r)}

	file, err := d.overview()
	if err != nil {
		return nil, err
	}

	file.SubFiles = make([]SubFile, 0, min(int(file.Header.NumFiles), 64))
	for i := 0; i < int(file.Header.NumFiles); i++ {
		sub, err := d.subFile(&file.Header)
		if err != nil {
			return nil, err
		}
		file.SubFiles = append(file.SubFiles, sub)
	}

	if err := d.trailer(); err != nil {
		return nil, err
	}

	if err := Validate(file); err != nil {
		return nil, err
	}

	return file, nil
}

type decoder struct {
	r      io.Reader
	order  binary.ByteOrder
	offset int64
	buf    [RecordSize]byte
}

// next reads one 16-byte record and checks its keyword.
func (d *decoder) next(want string) ([]byte, error) {
	start := d.offset
	n, err := io.ReadFull(d.r, d.buf[:])
	d.offset += int64(n)
	if err != nil {
		return nil, formatErr(start, want, "truncated header", err)
	}
	if key := trimText(d.buf[:KeySize]); want != "" && key != want {
		return nil, formatErr(start, want, fmt.Sprintf("unexpected keyword %q", key), nil)
	}
	return d.buf[KeySize:], nil
}

func (d *decoder) int32Value(want string) (int32, error) {
	v, err := d.next(want)
	if err != nil {
		return 0, err
	}
	return int32(d.order.Uint32(v[:4])), nil
}

func (d *decoder) floatValue(want string) (float64, error) {
	v, err := d.next(want)
	if err != nil {
		return 0, err
	}
	f := math.Float64frombits(d.order.Uint64(v))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, formatErr(d.offset-RecordSize, want, "value is not finite", nil)
	}
	return f, nil
}

func (d *decoder) textValue(want string) (string, error) {
	v, err := d.next(want)
	if err != nil {
		return "", err
	}
	return trimText(v), nil
}

// skip discards n records beyond the ones this decoder understands.
func (d *decoder) skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := d.next(""); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) overview() (*File, error) {
	n, err := io.ReadFull(d.r, d.buf[:])
	d.offset += int64(n)
	if err != nil {
		return nil, formatErr(0, overviewKeys[0], "truncated header", err)
	}
	if key := trimText(d.buf[:KeySize]); key != overviewKeys[0] {
		return nil, formatErr(0, overviewKeys[0], fmt.Sprintf("not an NTv2 file (first keyword %q)", key), nil)
	}

	// NUM_OREC is 11 in every conforming file, which settles the byte order.
	switch {
	case int32(binary.LittleEndian.Uint32(d.buf[KeySize:])) == OverviewRecords:
		d.order = binary.LittleEndian
	case int32(binary.BigEndian.Uint32(d.buf[KeySize:])) == OverviewRecords:
		d.order = binary.BigEndian
	default:
		return nil, formatErr(0, overviewKeys[0], "cannot determine byte order", nil)
	}

	file := &File{ByteOrder: d.order}
	h := &file.Header
	h.NumOverviewRecords = OverviewRecords

	if h.NumSubFileRecords, err = d.int32Value(overviewKeys[1]); err != nil {
		return nil, err
	}
	if h.NumFiles, err = d.int32Value(overviewKeys[2]); err != nil {
		return nil, err
	}
	if h.GridShiftType, err = d.textValue(overviewKeys[3]); err != nil {
		return nil, err
	}
	if h.Version, err = d.textValue(overviewKeys[4]); err != nil {
		return nil, err
	}
	if h.SystemFrom, err = d.textValue(overviewKeys[5]); err != nil {
		return nil, err
	}
	if h.SystemTo, err = d.textValue(overviewKeys[6]); err != nil {
		return nil, err
	}
	if h.MajorFrom, err = d.floatValue(overviewKeys[7]); err != nil {
		return nil, err
	}
	if h.MinorFrom, err = d.floatValue(overviewKeys[8]); err != nil {
		return nil, err
	}
	if h.MajorTo, err = d.floatValue(overviewKeys[9]); err != nil {
		return nil, err
	}
	if h.MinorTo, err = d.floatValue(overviewKeys[10]); err != nil {
		return nil, err
	}

	if err := ValidateHeader(h); err != nil {
		return nil, err
	}

	return file, nil
}

func (d *decoder) subFile(overview *Header) (SubFile, error) {
	var sub SubFile
	h := &sub.Header
	start := d.offset

	var err error
	if h.Name, err = d.textValue(subFileKeys[0]); err != nil {
		return sub, err
	}
	if h.Parent, err = d.textValue(subFileKeys[1]); err != nil {
		return sub, withSubGrid(err, h.Name)
	}
	if h.Created, err = d.textValue(subFileKeys[2]); err != nil {
		return sub, withSubGrid(err, h.Name)
	}
	if h.Updated, err = d.textValue(subFileKeys[3]); err != nil {
		return sub, withSubGrid(err, h.Name)
	}

	floats := []*float64{&h.SouthLat, &h.NorthLat, &h.EastLong, &h.WestLong, &h.LatInc, &h.LongInc}
	for i, dst := range floats {
		if *dst, err = d.floatValue(subFileKeys[4+i]); err != nil {
			return sub, withSubGrid(err, h.Name)
		}
	}
	if h.Count, err = d.int32Value(subFileKeys[10]); err != nil {
		return sub, withSubGrid(err, h.Name)
	}
	if err := d.skip(int(overview.NumSubFileRecords) - SubFileRecords); err != nil {
		return sub, withSubGrid(err, h.Name)
	}

	if err := ValidateSubFile(h); err != nil {
		return sub, withSubGrid(withOffset(err, start), h.Name)
	}

	sub.Records = make([]Record, 0, min(int(h.Count), recordChunk))
	for i := 0; i < int(h.Count); i++ {
		n, err := io.ReadFull(d.r, d.buf[:])
		d.offset += int64(n)
		if err != nil {
			return sub, &FormatError{
				Offset:  d.offset - int64(n),
				SubGrid: h.Name,
				Field:   fmt.Sprintf("record %d", i),
				Reason:  fmt.Sprintf("truncated: %d of %d records present", i, h.Count),
				Err:     err,
			}
		}
		sub.Records = append(sub.Records, Record{
			LatShift:    math.Float32frombits(d.order.Uint32(d.buf[0:4])),
			LonShift:    math.Float32frombits(d.order.Uint32(d.buf[4:8])),
			LatAccuracy: math.Float32frombits(d.order.Uint32(d.buf[8:12])),
			LonAccuracy: math.Float32frombits(d.order.Uint32(d.buf[12:16])),
		})
	}

	return sub, nil
}

// trailer consumes the END record. A stream that stops exactly after the
// last subgrid is accepted.
func (d *decoder) trailer() error {
	start := d.offset
	n, err := io.ReadFull(d.r, d.buf[:])
	d.offset += int64(n)
	switch {
	case n == 0 && errors.Is(err, io.EOF):
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Some writers emit only the keyword half of the record.
		if n >= len(endKeyword) && trimText(d.buf[:min(n, KeySize)]) == endKeyword {
			return nil
		}
		return formatErr(start, endKeyword, "truncated trailer", err)
	case err != nil:
		return formatErr(start, endKeyword, "read trailer", err)
	}
	if key := trimText(d.buf[:KeySize]); key != endKeyword {
		return formatErr(start, endKeyword, fmt.Sprintf("unexpected keyword %q after last subgrid", key), nil)
	}
	return nil
}

// trimText strips the space and NUL padding used by 8-byte text fields.
func trimText(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

func withSubGrid(err error, name string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.SubGrid == "" {
		fe.SubGrid = name
	}
	return err
}

func withOffset(err error, offset int64) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Offset < 0 {
		fe.Offset = offset
	}
	return err
}

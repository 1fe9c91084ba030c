package parser

import (
	"encoding/binary"
	"math"
	"strings"
)

// NTv2 container layout.
//
// Every field in an NTv2 file is a 16-byte record: an 8-byte ASCII keyword
// followed by an 8-byte value. Integers occupy the first four bytes of the
// value, floating point values use all eight, and text values are padded
// with spaces.
//
// References:
//   - NTv2 Developer's Guide (Geodetic Survey Division, Natural Resources Canada)
const (
	RecordSize = 16
	KeySize    = 8

	// OverviewRecords is the minimum number of records in the file header.
	OverviewRecords = 11

	// SubFileRecords is the minimum number of records in a subgrid header.
	SubFileRecords = 11

	// NoParent marks a top-level subgrid in the PARENT field.
	NoParent = "NONE"

	endKeyword = "END"
)

// Grid shift units accepted in GS_TYPE.
const (
	UnitSeconds = "SECONDS"
	UnitMinutes = "MINUTES"
	UnitDegrees = "DEGREES"
)

// Header is the overview header at the start of an NTv2 file.
type Header struct {
	NumOverviewRecords int32 // NUM_OREC
	NumSubFileRecords  int32 // NUM_SREC
	NumFiles           int32 // NUM_FILE

	GridShiftType string // GS_TYPE
	Version       string // VERSION
	SystemFrom    string // SYSTEM_F
	SystemTo      string // SYSTEM_T

	MajorFrom float64 // MAJOR_F, semi-major axis of the source ellipsoid
	MinorFrom float64 // MINOR_F
	MajorTo   float64 // MAJOR_T
	MinorTo   float64 // MINOR_T
}

// SubFileHeader describes one subgrid.
//
// Extents and increments are expressed in GridShiftType units with
// longitude positive west, exactly as stored on disk.
type SubFileHeader struct {
	Name    string // SUB_NAME
	Parent  string // PARENT
	Created string // CREATED
	Updated string // UPDATED

	SouthLat float64 // S_LAT
	NorthLat float64 // N_LAT
	EastLong float64 // E_LONG
	WestLong float64 // W_LONG
	LatInc   float64 // LAT_INC
	LongInc  float64 // LONG_INC

	Count int32 // GS_COUNT
}

// IsRoot reports whether the subgrid has no parent.
func (h *SubFileHeader) IsRoot() bool {
	return strings.EqualFold(strings.TrimSpace(h.Parent), NoParent) || strings.TrimSpace(h.Parent) == ""
}

// Dimensions returns the lattice size implied by the extents and increments.
// It does not compare the result with Count; see ValidateSubFile.
func (h *SubFileHeader) Dimensions() (rows, cols int) {
	rows = int(math.Round((h.NorthLat-h.SouthLat)/h.LatInc)) + 1
	cols = int(math.Round((h.WestLong-h.EastLong)/h.LongInc)) + 1
	return rows, cols
}

// Record is one grid node: shifts and accuracies in GridShiftType units.
// LonShift is positive west.
type Record struct {
	LatShift    float32
	LonShift    float32
	LatAccuracy float32
	LonAccuracy float32
}

// SubFile is a subgrid header with its node records in file order
// (rows south to north, each row east to west).
type SubFile struct {
	Header  SubFileHeader
	Records []Record
}

// File is a decoded NTv2 grid shift file.
type File struct {
	Header    Header
	ByteOrder binary.ByteOrder
	SubFiles  []SubFile
}

// UnitFactor returns the number of degrees in one GS_TYPE unit.
// An empty unit is treated as SECONDS.
func UnitFactor(unit string) (float64, bool) {
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case UnitSeconds, "":
		return 1.0 / 3600.0, true
	case UnitMinutes:
		return 1.0 / 60.0, true
	case UnitDegrees:
		return 1.0, true
	}
	return 0, false
}

// ArcSecondsPerUnit returns the number of arc-seconds in one GS_TYPE unit.
func ArcSecondsPerUnit(unit string) (float64, bool) {
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case UnitSeconds, "":
		return 1, true
	case UnitMinutes:
		return 60, true
	case UnitDegrees:
		return 3600, true
	}
	return 0, false
}

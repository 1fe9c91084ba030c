package parser

import (
	"fmt"
	"strings"
)

// ValidateHeader checks the overview header values that size the rest of the file.
func ValidateHeader(h *Header) error {
	if h.NumSubFileRecords < SubFileRecords || h.NumSubFileRecords > 4*SubFileRecords {
		return &FormatError{Offset: RecordSize, Field: "NUM_SREC",
			Reason: fmt.Sprintf("unsupported subgrid header size %d", h.NumSubFileRecords)}
	}
	if h.NumFiles <= 0 || h.NumFiles > MaxSubFiles {
		return &FormatError{Offset: 2 * RecordSize, Field: "NUM_FILE",
			Reason: fmt.Sprintf("subgrid count %d out of range", h.NumFiles)}
	}
	if _, ok := UnitFactor(h.GridShiftType); !ok {
		return &FormatError{Offset: 3 * RecordSize, Field: "GS_TYPE",
			Reason: fmt.Sprintf("unknown grid shift units %q", h.GridShiftType)}
	}
	return nil
}

// ValidateSubFile checks the lattice geometry of a subgrid header.
// Extents must be ordered, increments positive, and the implied
// rows x cols must equal GS_COUNT.
func ValidateSubFile(h *SubFileHeader) error {
	fail := func(field, reason string, err error) error {
		return &FormatError{Offset: -1, SubGrid: h.Name, Field: field, Reason: reason, Err: err}
	}

	if !(h.LatInc > 0) {
		return fail("LAT_INC", fmt.Sprintf("latitude increment %g is not positive", h.LatInc), nil)
	}
	if !(h.LongInc > 0) {
		return fail("LONG_INC", fmt.Sprintf("longitude increment %g is not positive", h.LongInc), nil)
	}
	if h.NorthLat < h.SouthLat {
		return fail("N_LAT", fmt.Sprintf("north %g is below south %g", h.NorthLat, h.SouthLat), nil)
	}
	if h.WestLong < h.EastLong {
		// Longitudes are positive west, so the west edge holds the larger value.
		return fail("W_LONG", fmt.Sprintf("west %g is east of %g", h.WestLong, h.EastLong), nil)
	}

	if (h.NorthLat-h.SouthLat)/h.LatInc >= MaxNodes || (h.WestLong-h.EastLong)/h.LongInc >= MaxNodes {
		return fail("GS_COUNT", fmt.Sprintf("lattice exceeds %d nodes", MaxNodes), nil)
	}

	rows, cols := h.Dimensions()
	dims := &ErrDimensions{SubGrid: h.Name, Rows: rows, Cols: cols, Count: h.Count}
	if rows <= 0 || cols <= 0 || h.Count <= 0 {
		return fail("GS_COUNT", "empty lattice", dims)
	}
	if int64(rows)*int64(cols) > MaxNodes {
		return fail("GS_COUNT", fmt.Sprintf("lattice exceeds %d nodes", MaxNodes), dims)
	}
	if int64(rows)*int64(cols) != int64(h.Count) {
		return fail("GS_COUNT", "node count mismatch", dims)
	}
	return nil
}

// ResolveParents maps every subgrid to the index of its parent, or -1 for
// top-level subgrids. A parent must be declared before its children; when
// two subgrids share a name the first one wins.
func ResolveParents(f *File) ([]int, error) {
	parents := make([]int, len(f.SubFiles))
	byName := make(map[string]int, len(f.SubFiles))

	for i := range f.SubFiles {
		h := &f.SubFiles[i].Header
		parents[i] = -1

		if !h.IsRoot() {
			p, ok := byName[strings.TrimSpace(h.Parent)]
			if !ok {
				return nil, &FormatError{
					Offset:  -1,
					SubGrid: h.Name,
					Field:   "PARENT",
					Reason:  "parent does not resolve",
					Err:     &ErrUnknownParent{SubGrid: h.Name, Parent: h.Parent},
				}
			}
			parents[i] = p
		}

		name := strings.TrimSpace(h.Name)
		if _, seen := byName[name]; !seen {
			byName[name] = i
		}
	}

	return parents, nil
}

// Validate checks cross-subgrid rules: every parent resolves and every child
// lies inside its parent's extent.
func Validate(f *File) error {
	if f == nil || len(f.SubFiles) == 0 {
		return &FormatError{Offset: -1, Field: "NUM_FILE", Reason: "file has no subgrids"}
	}

	for i := range f.SubFiles {
		if err := ValidateSubFile(&f.SubFiles[i].Header); err != nil {
			return err
		}
		if got, want := len(f.SubFiles[i].Records), int(f.SubFiles[i].Header.Count); got != want {
			return &FormatError{Offset: -1, SubGrid: f.SubFiles[i].Header.Name, Field: "GS_COUNT",
				Reason: fmt.Sprintf("%d records present, %d declared", got, want)}
		}
	}

	parents, err := ResolveParents(f)
	if err != nil {
		return err
	}

	for i, p := range parents {
		if p < 0 {
			continue
		}
		child, parent := &f.SubFiles[i].Header, &f.SubFiles[p].Header
		if !nested(child, parent) {
			return &FormatError{
				Offset:  -1,
				SubGrid: child.Name,
				Field:   "PARENT",
				Reason:  fmt.Sprintf("extent is not inside parent %q", parent.Name),
			}
		}
	}

	return nil
}

// nested reports whether child's extent lies within parent's, allowing a
// small fraction of the parent spacing for rounding in the header values.
func nested(child, parent *SubFileHeader) bool {
	tolLat := parent.LatInc * 1e-6
	tolLon := parent.LongInc * 1e-6
	return child.SouthLat >= parent.SouthLat-tolLat &&
		child.NorthLat <= parent.NorthLat+tolLat &&
		child.EastLong >= parent.EastLong-tolLon &&
		child.WestLong <= parent.WestLong+tolLon
}

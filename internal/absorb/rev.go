package absorb

import "math"

// Rev is a virtual revision. Its integer part is a true stack position in
// [0, revLength); a fractional part, when present, encodes an AbsorbEditId
// via embedAbsorbId so a single linelog can carry many uncommitted preview
// edits without a parallel rev-to-edit map.
type Rev float64

// AbsorbEditId stably identifies one absorb edit within a single analyze
// result, used to derive a unique fractional rev for that edit's preview.
type AbsorbEditId int

// fracUnit is U = 1/2^20, the fixed power-of-two reciprocal used to pack an
// AbsorbEditId into the fractional part of a Rev.
const fracUnit = 1.0 / float64(int64(1)<<20)

// maxAbsorbID is the exclusive upper bound on an id passed to embedAbsorbId.
// The largest valid id, maxAbsorbID-1, embeds at fraction maxAbsorbID*U,
// which is the same point revWithAbsorb returns, so that checkout still
// includes every embedded edit.
const maxAbsorbID = (int64(1) << 20) - 1

// EmbedAbsorbId computes embed(rev, id) = rev + (id+1)*U.
func EmbedAbsorbId(rev Rev, id AbsorbEditId) (Rev, error) {
	if rev != Rev(math.Trunc(float64(rev))) {
		return 0, invalidArgument("embed requires an integer base rev, got %v", float64(rev))
	}
	if id < 0 || int64(id) >= maxAbsorbID {
		return 0, invalidArgument("embed id %d out of range [0, %d)", id, maxAbsorbID)
	}
	return rev + Rev(float64(id+1)*fracUnit), nil
}

// ExtractRevAbsorbId computes extract(rev) = (floor(rev), round(frac(rev)/U)-1).
func ExtractRevAbsorbId(rev Rev) (Rev, AbsorbEditId, error) {
	base := math.Floor(float64(rev))
	frac := float64(rev) - base
	raw := frac / fracUnit
	rounded := math.Round(raw)
	if math.Abs(raw-rounded) > 1e-6 {
		return 0, 0, invalidArgument("rev %v does not encode an absorb id", float64(rev))
	}
	id := rounded - 1
	if id < 0 {
		return 0, 0, invalidArgument("rev %v encodes a negative absorb id", float64(rev))
	}
	return Rev(base), AbsorbEditId(id), nil
}

// RevWithAbsorb computes revWithAbsorb(rev) = floor(rev) + 1 - U, the
// canonical "latest content including every absorb edit currently assigned
// to that rev" checkout point.
func RevWithAbsorb(rev Rev) Rev {
	return Rev(math.Floor(float64(rev))+1) - Rev(fracUnit)
}

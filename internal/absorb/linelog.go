package absorb

import "sort"

// LinelogView is the external line-history capability the engine treats as
// opaque: construction from a file stack, full-text checkout, per-line
// blame, targeted chunk edits that become visible from a revision onward,
// and revision relabeling. The concrete implementation below is the
// adapter this repository provides in place of the systems-language
// linelog the spec assumes is already available.
type LinelogView interface {
	// Checkout returns the full text at rev.
	Checkout(rev Rev) (string, error)
	// CheckoutLines returns per-line provenance at rev.
	CheckoutLines(rev Rev) ([]LineInfo, error)
	// EditChunk replaces lines [a1, a2) of the view rooted at fromRev with
	// newLines, attributing the edit to toRev so it is visible from toRev
	// onward. It returns a new view; the receiver is left untouched.
	EditChunk(fromRev Rev, a1, a2 int, toRev Rev, newLines []string) (LinelogView, error)
	// RemapRevs rewrites revision labels without touching content or
	// order. It returns a new view; the receiver is left untouched.
	RemapRevs(mapping map[Rev]Rev) (LinelogView, error)
}

// logAtom is one physical line carried by a lineLog edit, with its birth
// revision expressed as a real Rev label so visibility comparisons against
// a query rev never need to floor or otherwise lose precision.
type logAtom struct {
	id    int
	birth Rev
	text  string
}

// editRecord is one accepted EditChunk call. a1/a2 stay in the coordinate
// space of topOrigIndex's blame row, which is why callers must apply edits
// in descending oldEnd order before indices would otherwise shift.
type editRecord struct {
	a1, a2 int
	toRev  Rev
	atoms  []logAtom
}

// lineLog is the concrete LinelogView. It keeps the full per-revision blame
// chain so that checking out an untouched revision simply replays that
// revision's own original content, while a revision reached by one or more
// edits splices them in by translating each edit's top-row coordinates to
// that revision's own coordinates via stable line identity.
type lineLog struct {
	bc           *blameChain
	topOrigIndex int
	labels       []Rev // labels[i] is the current label of original index i
	edits        []editRecord
	nextID       int
}

func newLineLog(bc *blameChain, topOrigIndex int) *lineLog {
	labels := make([]Rev, topOrigIndex+1)
	for i := range labels {
		labels[i] = Rev(i)
	}
	return &lineLog{bc: bc, topOrigIndex: topOrigIndex, labels: labels, nextID: bc.nextID}
}

func (l *lineLog) clone() *lineLog {
	return &lineLog{
		bc:           l.bc,
		topOrigIndex: l.topOrigIndex,
		labels:       append([]Rev{}, l.labels...),
		edits:        append([]editRecord{}, l.edits...),
		nextID:       l.nextID,
	}
}

func (l *lineLog) RemapRevs(mapping map[Rev]Rev) (LinelogView, error) {
	clone := l.clone()
	for i, lab := range clone.labels {
		if to, ok := mapping[lab]; ok {
			clone.labels[i] = to
		}
	}
	for i, e := range clone.edits {
		if to, ok := mapping[e.toRev]; ok {
			clone.edits[i].toRev = to
		}
	}
	return clone, nil
}

func (l *lineLog) EditChunk(fromRev Rev, a1, a2 int, toRev Rev, newLines []string) (LinelogView, error) {
	topRow := l.bc.perRev[l.topOrigIndex]
	if a1 < 0 || a2 < a1 || a2 > len(topRow) {
		return nil, invalidArgument("edit_chunk range [%d,%d) out of bounds for %d top lines", a1, a2, len(topRow))
	}
	_ = fromRev // fromRev only identifies the coordinate space, fixed at construction.
	clone := l.clone()
	atoms := make([]logAtom, len(newLines))
	for i, text := range newLines {
		atoms[i] = logAtom{id: clone.nextID, birth: toRev, text: text}
		clone.nextID++
	}
	clone.edits = append(clone.edits, editRecord{a1: a1, a2: a2, toRev: toRev, atoms: atoms})
	return clone, nil
}

func (l *lineLog) Checkout(rev Rev) (string, error) {
	atoms := l.reconstruct(rev)
	lines := make([]string, len(atoms))
	for i, a := range atoms {
		lines[i] = a.text
	}
	return joinLines(lines), nil
}

func (l *lineLog) CheckoutLines(rev Rev) ([]LineInfo, error) {
	atoms := l.reconstruct(rev)
	out := make([]LineInfo, len(atoms))
	for i, a := range atoms {
		out[i] = LineInfo{Rev: int(a.birth), LineID: a.id}
	}
	return out, nil
}

type spliceRange struct {
	q1, q2 int
	atoms  []logAtom
}

// reconstruct picks the original blame row of the latest original index
// whose current label has been reached by target, then splices in every
// edit whose toRev has also been reached, translating each edit's
// top-row-coordinate range into that row's own coordinates via the stable
// line identity shared by every row in the blame chain.
func (l *lineLog) reconstruct(target Rev) []logAtom {
	baseline := -1
	for i, lab := range l.labels {
		if lab <= target {
			baseline = i
		}
	}
	if baseline < 0 {
		return nil
	}

	baseRow := l.bc.perRev[baseline]
	result := make([]logAtom, len(baseRow))
	posInBase := make(map[int]int, len(baseRow))
	for i, a := range baseRow {
		result[i] = logAtom{id: a.id, birth: Rev(a.birth), text: a.text}
		posInBase[a.id] = i
	}

	topRow := l.bc.perRev[l.topOrigIndex]
	var ranges []spliceRange
	for _, e := range l.edits {
		if e.toRev > target {
			continue
		}
		if sr, ok := mapRange(e, topRow, posInBase); ok {
			ranges = append(ranges, sr)
		}
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].q1 > ranges[j].q1 })

	for _, sr := range ranges {
		head := append([]logAtom{}, result[:sr.q1]...)
		head = append(head, sr.atoms...)
		result = append(head, result[sr.q2:]...)
	}
	return result
}

// mapRange translates an edit's [a1, a2) range, given in topRow's
// coordinates, into the equivalent range in the reconstruction target's
// coordinates (posInBase), using the stable ids of the boundary lines that
// range abuts. It reports ok=false when a boundary line has not yet been
// introduced at the reconstruction target, which only happens for an edit
// that should not have been considered applicable in the first place.
func mapRange(e editRecord, topRow []atom, posInBase map[int]int) (spliceRange, bool) {
	if e.a1 < e.a2 {
		p1, ok1 := posInBase[topRow[e.a1].id]
		p2, ok2 := posInBase[topRow[e.a2-1].id]
		if !ok1 || !ok2 {
			return spliceRange{}, false
		}
		return spliceRange{q1: p1, q2: p2 + 1, atoms: e.atoms}, true
	}

	// Pure insertion: locate the point between its two coordinate
	// neighbours in topRow, preferring the line immediately at a1.
	if e.a1 < len(topRow) {
		if p, ok := posInBase[topRow[e.a1].id]; ok {
			return spliceRange{q1: p, q2: p, atoms: e.atoms}, true
		}
	}
	if e.a1 > 0 {
		if p, ok := posInBase[topRow[e.a1-1].id]; ok {
			return spliceRange{q1: p + 1, q2: p + 1, atoms: e.atoms}, true
		}
	}
	if len(topRow) == 0 {
		return spliceRange{q1: 0, q2: 0, atoms: e.atoms}, true
	}
	return spliceRange{}, false
}

package absorb

// AnalyseFileStack fuses a line diff between stack's revision at oldRev and
// newText with that revision's per-line blame, producing an ordered list of
// AbsorbDiffChunk candidates. oldRev defaults to stack.Len()-1 when no
// value is supplied.
func AnalyseFileStack(stack *FileStack, newText string, stackTopRev ...int) ([]*AbsorbDiffChunk, error) {
	if stack.Len() == 0 {
		return nil, invalidState("analyseFileStack called on an empty stack")
	}

	oldRev := stack.Len() - 1
	if len(stackTopRev) > 0 {
		oldRev = stackTopRev[0]
	}

	bc := buildBlame(stack.texts[:oldRev+1])
	blame := bc.blameAt(oldRev)
	old := splitLines(stack.Text(oldRev))
	newLines := splitLines(newText)

	var chunks []*AbsorbDiffChunk
	nextID := AbsorbEditId(0)
	emit := func(c *AbsorbDiffChunk) {
		c.AbsorbEditId = nextID
		nextID++
		chunks = append(chunks, c)
	}

	for _, op := range diffLines(old, newLines) {
		if op.Equal {
			continue
		}
		c, err := classify(old, newLines, blame, op)
		if err != nil {
			return nil, err
		}
		for _, sub := range c {
			emit(sub)
		}
	}

	return chunks, nil
}

// classify implements the five-case table of §4.2: pure insertion,
// single-rev change, pure deletion, equal-length replacement with mixed
// blame, and the fallback shape.
func classify(old, newLines []string, blame []LineInfo, op diffOp) ([]*AbsorbDiffChunk, error) {
	a1, a2, b1, b2 := op.A1, op.A2, op.B1, op.B2

	// Case 1: pure insertion.
	if a1 == a2 {
		involved := neighbourRevs(blame, a1, a2, len(old))
		if len(involved) == 1 {
			r := involved[0]
			c := chunk(a1, a2, nil, b1, b2, newLines[b1:b2], r)
			c.selectRev(r)
			return []*AbsorbDiffChunk{c}, nil
		}
		return []*AbsorbDiffChunk{fallbackChunk(old, newLines, a1, a2, b1, b2, involved)}, nil
	}

	// Case 2: single-rev change.
	if rev, ok := singleNonZeroRev(blame[a1:a2]); ok {
		c := chunk(a1, a2, old[a1:a2], b1, b2, newLines[b1:b2], rev)
		c.selectRev(rev)
		return []*AbsorbDiffChunk{c}, nil
	}

	// Case 3: pure deletion spanning multiple blames.
	if b1 == b2 {
		var out []*AbsorbDiffChunk
		for _, run := range splitChunk(blame, a1, a2) {
			c := chunk(run.start, run.end, old[run.start:run.end], b1, b1, nil, run.rev)
			c.selectRev(run.rev)
			out = append(out, c)
		}
		return out, nil
	}

	// Case 4: equal-length replacement with at least one non-public blame.
	if a2-a1 == b2-b1 && hasNonPublicBlame(blame[a1:a2]) {
		delta := b1 - a1
		var out []*AbsorbDiffChunk
		for _, run := range splitChunk(blame, a1, a2) {
			ns, ne := run.start+delta, run.end+delta
			c := chunk(run.start, run.end, old[run.start:run.end], ns, ne, newLines[ns:ne], run.rev)
			if run.rev != 0 {
				c.selectRev(run.rev)
			}
			out = append(out, c)
		}
		return out, nil
	}

	// Case 5: fallback.
	involved := distinctNonZeroRevs(blame[a1:a2])
	return []*AbsorbDiffChunk{fallbackChunk(old, newLines, a1, a2, b1, b2, involved)}, nil
}

func fallbackChunk(old, newLines []string, a1, a2, b1, b2 int, involved []int) *AbsorbDiffChunk {
	introduction := 0
	for _, r := range involved {
		if r > introduction {
			introduction = r
		}
	}
	return chunk(a1, a2, old[a1:a2], b1, b2, newLines[b1:b2], introduction)
}

// neighbourRevs collects the distinct non-public revs blamed to the two
// nearest surviving neighbours of an insertion point {a2, max(0, a1-1)}.
func neighbourRevs(blame []LineInfo, a1, a2, oldLen int) []int {
	seen := map[int]bool{}
	var out []int
	add := func(pos int) {
		if pos < 0 || pos >= oldLen {
			return
		}
		r := blame[pos].Rev
		if r == 0 || seen[r] {
			return
		}
		seen[r] = true
		out = append(out, r)
	}
	add(a2)
	add(max(0, a1-1))
	return out
}

func singleNonZeroRev(blame []LineInfo) (int, bool) {
	rev := -1
	for _, li := range blame {
		if li.Rev == 0 {
			continue
		}
		if rev == -1 {
			rev = li.Rev
		} else if rev != li.Rev {
			return 0, false
		}
	}
	if rev == -1 {
		return 0, false
	}
	return rev, true
}

func hasNonPublicBlame(blame []LineInfo) bool {
	for _, li := range blame {
		if li.Rev > 0 {
			return true
		}
	}
	return false
}

func distinctNonZeroRevs(blame []LineInfo) []int {
	seen := map[int]bool{}
	var out []int
	for _, li := range blame {
		if li.Rev == 0 || seen[li.Rev] {
			continue
		}
		seen[li.Rev] = true
		out = append(out, li.Rev)
	}
	return out
}

type blameRun struct {
	start, end, rev int
}

// splitChunk emits consecutive sub-ranges of [start, end), each paired with
// a single blame rev, with boundaries wherever adjacent lines' revs differ.
func splitChunk(blame []LineInfo, start, end int) []blameRun {
	if start >= end {
		return nil
	}
	var runs []blameRun
	runStart := start
	runRev := blame[start].Rev
	for i := start + 1; i < end; i++ {
		if blame[i].Rev != runRev {
			runs = append(runs, blameRun{runStart, i, runRev})
			runStart = i
			runRev = blame[i].Rev
		}
	}
	runs = append(runs, blameRun{runStart, end, runRev})
	return runs
}

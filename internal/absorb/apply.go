package absorb

import "sort"

// ApplyFileStackEdits is the committed applier: it materializes every
// chunk whose SelectedRev is set and >= 1 into a fresh FileStack by editing
// a linelog rooted at the stack's top revision.
func ApplyFileStackEdits(stack *FileStack, chunks []*AbsorbDiffChunk) (*FileStack, error) {
	if stack.Len() == 0 {
		return nil, invalidState("applyFileStackEdits called on an empty stack")
	}

	oldRev := stack.Len() - 1
	bc := buildBlame(stack.texts)

	var view LinelogView = newLineLog(bc, oldRev)

	doubling := map[Rev]Rev{}
	for i := 0; i < stack.Len(); i++ {
		doubling[Rev(i)] = Rev(2 * i)
	}
	view, err := view.RemapRevs(doubling)
	if err != nil {
		return nil, err
	}

	selected := make([]*AbsorbDiffChunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Selected && c.SelectedRev >= 1 {
			selected = append(selected, c)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].OldEnd > selected[j].OldEnd })

	for _, c := range selected {
		if c.SelectedRev < c.IntroductionRev {
			return nil, invalidArgument("chunk selected rev %d is below its introduction rev %d", c.SelectedRev, c.IntroductionRev)
		}
		toRev := Rev(2*c.SelectedRev + 1)
		view, err = view.EditChunk(Rev(2*oldRev), c.OldStart, c.OldEnd, toRev, c.NewLines)
		if err != nil {
			return nil, err
		}
	}

	out := make([]string, stack.Len())
	for i := 0; i < stack.Len(); i++ {
		text, err := view.Checkout(Rev(2*i + 1))
		if err != nil {
			return nil, err
		}
		out[i] = text
	}
	return NewFileStack(out), nil
}

// CalculateAbsorbEditsForFileStack is the preview applier: it analyzes
// stack's top committed revision against the wdir text carried in stack's
// last element, assigns each chunk an AbsorbEditId, and embeds every chunk
// as a fractional sub-revision of its destination (or of wdir, when
// unselected) so the result stays interactively re-targetable.
func CalculateAbsorbEditsForFileStack(stack *FileStack) (*FileStack, map[AbsorbEditId]*AbsorbDiffChunk, error) {
	if stack.Len() < 2 {
		return nil, nil, invalidState("calculateAbsorbEditsForFileStack needs at least one committed revision plus wdir")
	}

	wdirRev := stack.Len() - 1
	oldRev := wdirRev - 1

	chunks, err := AnalyseFileStack(stack, stack.Text(wdirRev), oldRev)
	if err != nil {
		return nil, nil, err
	}

	idMap := make(map[AbsorbEditId]*AbsorbDiffChunk, len(chunks))
	for _, c := range chunks {
		idMap[c.AbsorbEditId] = c
	}

	bc := buildBlame(stack.texts[:oldRev+1])
	var view LinelogView = newLineLog(bc, oldRev)

	ordered := append([]*AbsorbDiffChunk{}, chunks...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].OldEnd > ordered[j].OldEnd })

	for _, c := range ordered {
		base := wdirRev
		if c.Selected {
			base = c.SelectedRev
		}
		target, err := EmbedAbsorbId(Rev(base), c.AbsorbEditId)
		if err != nil {
			return nil, nil, err
		}
		if float64(target) < float64(c.IntroductionRev) || target < 1 {
			return nil, nil, invalidArgument("chunk target %v is below its introduction rev %d", float64(target), c.IntroductionRev)
		}
		view, err = view.EditChunk(Rev(oldRev), c.OldStart, c.OldEnd, target, c.NewLines)
		if err != nil {
			return nil, nil, err
		}
	}

	out := make([]string, stack.Len())
	copy(out, stack.texts[:oldRev+1])
	wdirText, err := view.Checkout(Rev(wdirRev))
	if err != nil {
		return nil, nil, err
	}
	out[wdirRev] = wdirText
	out[oldRev], err = view.Checkout(Rev(oldRev))
	if err != nil {
		return nil, nil, err
	}

	newStack := NewFileStack(out)
	newStack.view = view
	return newStack, idMap, nil
}

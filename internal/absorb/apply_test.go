package absorb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyS1CommittedApply(t *testing.T) {
	stack := NewFileStack([]string{"a\nb\nc\n", "a\nB\nc\n"})
	chunks, err := AnalyseFileStack(stack, "a\nBB\nc\n")
	require.NoError(t, err)

	out, err := ApplyFileStackEdits(stack, chunks)
	require.NoError(t, err)
	require.Equal(t, "a\nb\nc\n", out.Text(0))
	require.Equal(t, "a\nBB\nc\n", out.Text(1))
}

func TestApplyS2CommittedApplyInsertion(t *testing.T) {
	stack := NewFileStack([]string{"x\ny\n", "x\nY\n"})
	chunks, err := AnalyseFileStack(stack, "x\nY\nZ\n")
	require.NoError(t, err)

	out, err := ApplyFileStackEdits(stack, chunks)
	require.NoError(t, err)
	require.Equal(t, "x\ny\n", out.Text(0))
	require.Equal(t, "x\nY\nZ\n", out.Text(1))
}

func TestApplyS3PureDeletionSpanningBlames(t *testing.T) {
	stack := NewFileStack([]string{"a\nb\n", "a\nb\nc\n", "a\nb\nc\nd\n"})
	chunks, err := AnalyseFileStack(stack, "a\n")
	require.NoError(t, err)

	out, err := ApplyFileStackEdits(stack, chunks)
	require.NoError(t, err)
	require.Equal(t, "a\nb\n", out.Text(0), "rev0's sub-chunk is filtered out, rev0 stays untouched")
	require.Equal(t, "a\nb\n", out.Text(1), "c was removed from rev1")
	require.Equal(t, "a\nb\n", out.Text(2), "c and d were both removed from rev2")
}

func TestApplyS4EqualLengthReplacementMixedBlames(t *testing.T) {
	stack := NewFileStack([]string{"p\nq\n", "P\nq\n", "P\nQ\n"})
	chunks, err := AnalyseFileStack(stack, "P'\nQ'\n")
	require.NoError(t, err)

	out, err := ApplyFileStackEdits(stack, chunks)
	require.NoError(t, err)
	require.Equal(t, "p\nq\n", out.Text(0))
	require.Equal(t, "P'\nq\n", out.Text(1))
	require.Equal(t, "P'\nQ'\n", out.Text(2))
}

func TestApplyPublicImmutabilityInvariant(t *testing.T) {
	stack := NewFileStack([]string{"a\nb\nc\n", "a\nB\nc\n"})
	chunks, err := AnalyseFileStack(stack, "a\nBB\nc\n")
	require.NoError(t, err)

	out, err := ApplyFileStackEdits(stack, chunks)
	require.NoError(t, err)
	require.Equal(t, stack.Text(0), out.Text(0))
}

func TestApplyTopRevReproductionInvariant(t *testing.T) {
	stack := NewFileStack([]string{"p\nq\n", "P\nq\n", "P\nQ\n"})
	newText := "P'\nQ'\n"
	chunks, err := AnalyseFileStack(stack, newText)
	require.NoError(t, err)

	out, err := ApplyFileStackEdits(stack, chunks)
	require.NoError(t, err)
	require.Equal(t, newText, out.Text(out.Len()-1))
}

func TestApplyIdempotenceOnTrivialInput(t *testing.T) {
	stack := NewFileStack([]string{"a\nb\nc\n", "a\nB\nc\n"})
	chunks, err := AnalyseFileStack(stack, stack.Text(1))
	require.NoError(t, err)
	require.Empty(t, chunks)

	out, err := ApplyFileStackEdits(stack, chunks)
	require.NoError(t, err)
	for i := 0; i < stack.Len(); i++ {
		require.Equal(t, stack.Text(i), out.Text(i))
	}
}

func TestApplyRejectsSelectedBelowIntroduction(t *testing.T) {
	stack := NewFileStack([]string{"a\nb\n", "a\nB\n"})
	bogus := &AbsorbDiffChunk{
		OldStart: 1, OldEnd: 2, OldLines: []string{"B\n"},
		NewStart: 1, NewEnd: 2, NewLines: []string{"X\n"},
		IntroductionRev: 1, SelectedRev: 0, Selected: true,
	}
	_, err := ApplyFileStackEdits(stack, []*AbsorbDiffChunk{bogus})
	require.NoError(t, err, "SelectedRev 0 is simply filtered out, not an error")

	bogus.SelectedRev = 1
	bogus.IntroductionRev = 2
	_, err = ApplyFileStackEdits(stack, []*AbsorbDiffChunk{bogus})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestApplyOnEmptyStackIsInvalidState(t *testing.T) {
	stack := NewFileStack(nil)
	_, err := ApplyFileStackEdits(stack, nil)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCalculateAbsorbEditsS6PreviewRoundTrip(t *testing.T) {
	stack := NewFileStack([]string{"a\nb\nc\n", "a\nB\nc\n", "a\nBB\nc\n"})

	preview, idMap, err := CalculateAbsorbEditsForFileStack(stack)
	require.NoError(t, err)
	require.NotEmpty(t, idMap)

	got, err := preview.CheckoutRev(RevWithAbsorb(Rev(1)))
	require.NoError(t, err)
	require.Equal(t, "a\nBB\nc\n", got)

	wdirRev := Rev(stack.Len() - 1)
	gotWdir, err := preview.CheckoutRev(wdirRev)
	require.NoError(t, err)
	require.Equal(t, stack.Text(stack.Len()-1), gotWdir)
}

func TestCalculateAbsorbEditsPreviewConsistencyInvariant(t *testing.T) {
	stack := NewFileStack([]string{"p\nq\n", "P\nq\n", "P\nQ\n", "P'\nQ'\n"})

	preview, _, err := CalculateAbsorbEditsForFileStack(stack)
	require.NoError(t, err)

	committedChunks, err := AnalyseFileStack(stack, stack.Text(stack.Len()-1), stack.Len()-2)
	require.NoError(t, err)

	for _, target := range []int{1, 2} {
		var selected []*AbsorbDiffChunk
		for _, c := range committedChunks {
			if c.Selected && c.SelectedRev <= target {
				selected = append(selected, c)
			}
		}
		committedStack := NewFileStack(stack.texts[:stack.Len()-1])
		applied, err := ApplyFileStackEdits(committedStack, selected)
		require.NoError(t, err)

		got, err := preview.CheckoutRev(RevWithAbsorb(Rev(target)))
		require.NoError(t, err)
		require.Equal(t, applied.Text(target), got)
	}
}

package absorb

import "github.com/pmezard/go-difflib/difflib"

// diffOp is one tuple of the line-diff capability's non-overlapping ordered
// cover: old[A1:A2] corresponds to new[B1:B2]. Equal is true when the spans
// are identical content the matcher chose not to alter.
type diffOp struct {
	A1, A2, B1, B2 int
	Equal          bool
}

// diffLines produces a complete, non-overlapping, ordered cover of (old,
// new) using go-difflib's SequenceMatcher, grounded on the
// opcode cover contract in difflib.SequenceMatcher.GetOpCodes.
func diffLines(old, new []string) []diffOp {
	matcher := difflib.NewMatcher(old, new)
	opCodes := matcher.GetOpCodes()
	ops := make([]diffOp, 0, len(opCodes))
	for _, oc := range opCodes {
		ops = append(ops, diffOp{
			A1:    oc.I1,
			A2:    oc.I2,
			B1:    oc.J1,
			B2:    oc.J2,
			Equal: oc.Tag == 'e',
		})
	}
	return ops
}

// Package absorb implements the line-history engine that redistributes
// pending working-directory edits back into the stack revisions that last
// touched the surrounding lines.
//
// The package has three layers: rev arithmetic (embedding a small edit
// identifier into a virtual fractional revision number), an analyzer that
// turns a line diff plus per-line blame into a list of AbsorbDiffChunk
// candidates, and two appliers (committed and preview) that materialize
// chunk selections back into a FileStack by editing a line-history view.
package absorb

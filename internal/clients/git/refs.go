package git

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// AnnotateRefName returns the short name of the ref, labeled with its kind.
func AnnotateRefName(name plumbing.ReferenceName) string {
	b := strings.Builder{}
	switch {
	case name.IsBranch():
		b.WriteString("(branch) ")
	case name.IsTag():
		b.WriteString("(tag) ")
	case name.IsRemote():
		b.WriteString("(remote) ")
	}
	b.WriteString(name.Short())
	return b.String()
}

// StringifyRef describes a ref and the commit (or ref) it points at, e.g.
// "(branch) main -> (commit) 1a2b3c4".
func StringifyRef(ref *plumbing.Reference) string {
	b := strings.Builder{}
	b.WriteString(AnnotateRefName(ref.Name()))
	b.WriteString(" -> ")
	switch ref.Type() {
	default:
		b.WriteString("(invalid)")
	case plumbing.HashReference:
		b.WriteString("(commit) ")
		b.WriteString(AbbreviateHash(ref.Hash()))
	case plumbing.SymbolicReference:
		b.WriteString(AnnotateRefName(ref.Target()))
	}
	return b.String()
}

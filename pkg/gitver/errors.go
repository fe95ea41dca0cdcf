package gitver

import (
	"github.com/pkg/errors"
)

var (
	// ErrRepositoryNotFound means that there is no git repository at the path. Derive falls back to
	// the fallback version.
	ErrRepositoryNotFound = errors.New("no git repository found")
	// ErrNoTagsReachable means that no annotated tag (matching the pattern, if any) is reachable
	// from HEAD. Derive falls back to the fallback version.
	ErrNoTagsReachable = errors.New("no annotated tags reachable from HEAD")
)

package gitver

import (
	"crypto/md5" //nolint:gosec // compatibility with versions derived by the Gradle plugin
	"hash"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

// DefaultFallbackVersion is the version reported when no version can be derived from the repo.
const DefaultFallbackVersion = "0.0.0-SNAPSHOT"

// Options configures how a version is derived.
type Options struct {
	// CommitsNo enables the `-<count>-g<hash>` suffix for commits made after the current tag.
	CommitsNo bool `yaml:"commits-no"`
	// Dirty selects how uncommitted changes in the worktree are marked.
	Dirty DirtyMode `yaml:"dirty"`
	// Digest selects the hash function used by [DirtyHash].
	Digest DigestAlgorithm `yaml:"digest"`
	// FallbackVersion is reported when there is no repo or no reachable tag.
	FallbackVersion string `yaml:"fallback-version"`
	// Match is a doublestar pattern which tag names must match to be considered; an empty pattern
	// matches every tag.
	Match string `yaml:"match"`
	// IgnoreInvalidTags skips tags whose names can't be parsed as versions, instead of failing.
	IgnoreInvalidTags bool `yaml:"ignore-invalid-tags"`
	// DetectDotGit makes the repo be searched for in parent directories of the path, too.
	DetectDotGit bool `yaml:"detect-dot-git"`
}

func DefaultOptions() Options {
	return Options{
		CommitsNo:       true,
		Dirty:           DirtyHash,
		Digest:          DigestMD5,
		FallbackVersion: DefaultFallbackVersion,
	}
}

// Check looks for errors in the construction of the options.
func (o Options) Check() (errs []error) {
	if _, err := o.Dirty.detector(o.Digest); err != nil {
		errs = append(errs, err)
	}
	if o.Match != "" && !doublestar.ValidatePattern(o.Match) {
		errs = append(errs, errors.Errorf("invalid tag pattern %s", o.Match))
	}
	return errs
}

// DirtyMode

// A DirtyMode is a strategy for marking versions derived from a worktree with uncommitted
// changes.
type DirtyMode string

const (
	// DirtyNone ignores the state of the worktree.
	DirtyNone DirtyMode = "none"
	// DirtyFlag appends `-DIRTY` if any file is untracked, missing, modified, or staged with changes.
	DirtyFlag DirtyMode = "flag"
	// DirtyHash appends `-DIRTY-<hash>`, where the hash identifies the diff from the index to the
	// worktree. The same changes on the same commit always give the same hash.
	DirtyHash DirtyMode = "hash"
)

// DirtyModeFromFlags maps the pair of dirtiness detection switches used by the Gradle plugin onto
// a DirtyMode.
func DirtyModeFromFlags(detect, hash bool) DirtyMode {
	switch {
	case !detect:
		return DirtyNone
	case hash:
		return DirtyHash
	default:
		return DirtyFlag
	}
}

func (m DirtyMode) detector(digest DigestAlgorithm) (dirtinessDetector, error) {
	switch m {
	case DirtyNone:
		return noDetection{}, nil
	case DirtyFlag:
		return flagDetection{}, nil
	case DirtyHash, "":
		newHash, err := digest.hasher()
		if err != nil {
			return nil, err
		}
		return hashDetection{newHash: newHash}, nil
	}
	return nil, errors.Errorf(
		"unknown dirtiness mode %s (must be %s, %s, or %s)", m, DirtyNone, DirtyFlag, DirtyHash,
	)
}

// DigestAlgorithm

// A DigestAlgorithm names the hash function applied to worktree diffs.
type DigestAlgorithm string

const (
	DigestMD5    DigestAlgorithm = "md5"
	DigestBLAKE3 DigestAlgorithm = "blake3"
)

func (a DigestAlgorithm) hasher() (func() hash.Hash, error) {
	switch a {
	case DigestMD5, "":
		return md5.New, nil
	case DigestBLAKE3:
		return func() hash.Hash { return blake3.New() }, nil
	}
	return nil, errors.Errorf(
		"unknown digest algorithm %s (must be %s or %s)", a, DigestMD5, DigestBLAKE3,
	)
}

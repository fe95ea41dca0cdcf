package gitver

import (
	"encoding/hex"
	"hash"

	"github.com/pkg/errors"

	"github.com/heronman/version-from-git/internal/clients/git"
)

const (
	dirtySuffix     = "-DIRTY"
	dirtyHashLength = 8
)

// A dirtinessDetector computes the suffix which marks uncommitted changes in the worktree.
type dirtinessDetector interface {
	// suffix returns "" when the worktree has no changes which the detector cares about.
	suffix(repo *git.Repo) (string, error)
}

type noDetection struct{}

func (noDetection) suffix(*git.Repo) (string, error) {
	return "", nil
}

type flagDetection struct{}

func (flagDetection) suffix(repo *git.Repo) (string, error) {
	dirty, err := repo.HasLocalChanges()
	if err != nil {
		return "", errors.Wrap(err, "couldn't check the worktree for local changes")
	}
	if !dirty {
		return "", nil
	}
	return dirtySuffix, nil
}

type hashDetection struct {
	newHash func() hash.Hash
}

func (d hashDetection) suffix(repo *git.Repo) (string, error) {
	h := d.newHash()
	files, err := repo.WorktreeDiff(h)
	if err != nil {
		return "", errors.Wrap(err, "couldn't diff the worktree against the index")
	}
	if files == 0 {
		return "", nil
	}
	return dirtySuffix + "-" + hex.EncodeToString(h.Sum(nil))[:dirtyHashLength], nil
}

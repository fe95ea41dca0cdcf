// Package git provides the read-only repository queries needed to derive versions from tags.
package git

import (
	"io"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"

	"github.com/heronman/version-from-git/pkg/structures"
)

var (
	ErrRepositoryNotExists = git.ErrRepositoryNotExists
	// ErrNoCommits is returned when HEAD can't be resolved because nothing was committed yet.
	ErrNoCommits = errors.New("repository has no commits")
)

func AbbreviateHash(h plumbing.Hash) string {
	const shortHashLength = 7
	return h.String()[:shortHashLength]
}

type Repo struct {
	repository *git.Repository
	ancestry   map[plumbing.Hash]structures.Set[plumbing.Hash]
	shallow    structures.Set[plumbing.Hash]
}

// Open opens the git repository at the local path. If detectDotGit is set, parent directories are
// searched as well. Errors wrap [ErrRepositoryNotExists] when no repository was found.
func Open(local string, detectDotGit bool) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(local, &git.PlainOpenOptions{
		DetectDotGit: detectDotGit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open git repo at %s", local)
	}
	return &Repo{
		repository: repo,
		ancestry:   make(map[plumbing.Hash]structures.Set[plumbing.Hash]),
	}, nil
}

// Close releases the object storage of the repository.
func (r *Repo) Close() error {
	if c, ok := r.repository.Storer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Head returns the resolved HEAD reference. If the repository has no commits, the error is
// [ErrNoCommits].
func (r *Repo) Head() (*plumbing.Reference, error) {
	ref, err := r.repository.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoCommits
		}
		return nil, errors.Wrap(err, "couldn't resolve HEAD")
	}
	return ref, nil
}

// Tags

// A Tag is an annotated tag pointing at a commit.
type Tag struct {
	Name   string
	Commit plumbing.Hash
	Tagger object.Signature
}

func (t Tag) GetName() string {
	return t.Name
}

// AnnotatedTags lists the annotated tags of the repo which point directly at commits. Lightweight
// tags are skipped, since they carry no tagger.
func (r *Repo) AnnotatedTags() ([]Tag, error) {
	iter, err := r.repository.Tags()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't list tags")
	}
	defer iter.Close()

	tags := make([]Tag, 0)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tagObject, err := r.repository.TagObject(ref.Hash())
		if err != nil {
			if errors.Is(err, plumbing.ErrObjectNotFound) {
				return nil // lightweight tag
			}
			return errors.Wrapf(err, "couldn't load tag %s", ref.Name().Short())
		}
		if tagObject.TargetType != plumbing.CommitObject {
			return nil
		}
		tags = append(tags, Tag{
			Name:   strings.TrimPrefix(string(ref.Name()), "refs/tags/"),
			Commit: tagObject.Target,
			Tagger: tagObject.Tagger,
		})
		return nil
	})
	return tags, err
}

// Tagged returns when the tag was made.
func (t Tag) Tagged() time.Time {
	return t.Tagger.When
}

// Ancestry

// Ancestors returns the hashes of the commit and of every commit reachable from it through parent
// links, including the parents of merge commits. Commits at the boundary of a shallow clone are
// treated as having no parents.
func (r *Repo) Ancestors(commit plumbing.Hash) (structures.Set[plumbing.Hash], error) {
	if ancestors, ok := r.ancestry[commit]; ok {
		return ancestors, nil
	}
	shallow, err := r.shallowCommits()
	if err != nil {
		return nil, err
	}

	// Walk ancestor commits with a breadth-first search
	visitQueue := []plumbing.Hash{commit}
	visited := make(structures.Set[plumbing.Hash])
	for len(visitQueue) > 0 {
		next := visitQueue[0]
		visitQueue = visitQueue[1:]
		if visited.Has(next) {
			continue
		}

		commitObject, err := r.repository.CommitObject(next)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't load commit %s", next)
		}
		visited.Add(next)
		if shallow.Has(next) {
			continue
		}
		for _, hash := range commitObject.ParentHashes {
			if visited.Has(hash) {
				continue
			}
			visitQueue = append(visitQueue, hash)
		}
	}
	r.ancestry[commit] = visited
	return visited, nil
}

func (r *Repo) shallowCommits() (structures.Set[plumbing.Hash], error) {
	if r.shallow != nil {
		return r.shallow, nil
	}
	hashes, err := r.repository.Storer.Shallow()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't list shallow commits")
	}
	r.shallow = structures.NewSet(hashes...)
	return r.shallow, nil
}

// IsAncestor checks whether ancestor is reachable from commit (or is commit itself).
func (r *Repo) IsAncestor(ancestor, commit plumbing.Hash) (bool, error) {
	ancestors, err := r.Ancestors(commit)
	if err != nil {
		return false, errors.Wrapf(err, "couldn't determine ancestors of %s", commit)
	}
	return ancestors.Has(ancestor), nil
}

// CountCommitsBetween counts the commits which are reachable from tip but not from base.
func (r *Repo) CountCommitsBetween(base, tip plumbing.Hash) (int, error) {
	tipAncestors, err := r.Ancestors(tip)
	if err != nil {
		return 0, errors.Wrapf(err, "couldn't determine ancestors of %s", tip)
	}
	baseAncestors, err := r.Ancestors(base)
	if err != nil {
		return 0, errors.Wrapf(err, "couldn't determine ancestors of %s", base)
	}
	return len(tipAncestors.Difference(baseAncestors)), nil
}

// Worktree status

func (r *Repo) Status() (status git.Status, err error) {
	worktree, err := r.repository.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open worktree")
	}
	status, err = worktree.Status()
	return status, errors.Wrap(err, "couldn't determine worktree status")
}

// HasLocalChanges checks whether the worktree has untracked, missing or modified files, or files
// whose staged contents differ from HEAD.
func (r *Repo) HasLocalChanges() (bool, error) {
	status, err := r.Status()
	if err != nil {
		return false, err
	}
	for _, fileStatus := range status {
		switch {
		case fileStatus.Worktree == git.Untracked,
			fileStatus.Worktree == git.Deleted,
			fileStatus.Worktree == git.Modified,
			fileStatus.Staging == git.Modified:
			return true, nil
		}
	}
	return false, nil
}

package gitver

import (
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"

	"github.com/heronman/version-from-git/internal/clients/git"
	"github.com/heronman/version-from-git/pkg/versioning"
)

// A Candidate is an annotated tag which could identify the current version.
type Candidate struct {
	// Name is the name of the tag.
	Name string
	// Commit is the tagged commit.
	Commit plumbing.Hash
	// Tagged is when the tag was made.
	Tagged time.Time
	// Version is the version parsed from the tag name. It's only meaningful if ParseErr is nil.
	Version versioning.Version
	// ParseErr is the error from parsing the tag name as a version, if any.
	ParseErr error
	// Reachable is set if the tagged commit is HEAD or an ancestor of HEAD.
	Reachable bool
	// Selected is set on the candidate which identifies the current version.
	Selected bool
}

// Better checks whether the candidate should be preferred over the other candidate as the
// current tag: the greater version wins, then the more recent tag, then the greater name.
func (c Candidate) Better(o Candidate) bool {
	if cmp := c.Version.Compare(o.Version); cmp != 0 {
		return cmp > 0
	}
	if !c.Tagged.Equal(o.Tagged) {
		return c.Tagged.After(o.Tagged)
	}
	return c.Name > o.Name
}

// ListCandidates lists all annotated tags of the repo at the path which match the pattern in the
// options, marking the one which Derive would select, if any.
func ListCandidates(repoPath string, opts Options) (candidates []Candidate, err error) {
	repo, err := openRepo(repoPath, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = repo.Close()
	}()

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, git.ErrNoCommits) {
			return nil, nil
		}
		return nil, err
	}
	if candidates, err = collectCandidates(repo, head.Hash(), opts.Match); err != nil {
		return nil, err
	}
	selected, err := selectCandidate(candidates, true, NopReporter{})
	if err != nil {
		if errors.Is(err, ErrNoTagsReachable) {
			return candidates, nil
		}
		return nil, err
	}
	candidates[selected].Selected = true
	return candidates, nil
}

func openRepo(repoPath string, opts Options) (*git.Repo, error) {
	repo, err := git.Open(repoPath, opts.DetectDotGit)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errors.Wrapf(ErrRepositoryNotFound, "couldn't open %s", repoPath)
		}
		return nil, err
	}
	return repo, nil
}

// collectCandidates lists the annotated tags matching the pattern, determining for each one
// whether it's reachable from head and what version it names.
func collectCandidates(
	repo *git.Repo, head plumbing.Hash, pattern string,
) ([]Candidate, error) {
	tags, err := repo.AnnotatedTags()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't list annotated tags")
	}
	candidates := make([]Candidate, 0, len(tags))
	for _, tag := range tags {
		if pattern != "" {
			match, err := doublestar.Match(pattern, tag.Name)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't match tag %s against %s", tag.Name, pattern)
			}
			if !match {
				continue
			}
		}
		reachable, err := repo.IsAncestor(tag.Commit, head)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't check whether tag %s is reachable", tag.Name)
		}
		c := Candidate{
			Name:      tag.Name,
			Commit:    tag.Commit,
			Tagged:    tag.Tagged(),
			Reachable: reachable,
		}
		if c.Version, c.ParseErr = versioning.Parse(tag.Name); c.ParseErr != nil {
			c.ParseErr = errors.Wrapf(c.ParseErr, "couldn't parse tag %s as a version", tag.Name)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// selectCandidate returns the index of the best reachable candidate. Reachable candidates whose
// names aren't versions make the selection fail, unless ignoreInvalid is set.
func selectCandidate(
	candidates []Candidate, ignoreInvalid bool, reporter Reporter,
) (selected int, err error) {
	selected = -1
	for i, c := range candidates {
		if !c.Reachable {
			continue
		}
		if c.ParseErr != nil {
			if !ignoreInvalid {
				return -1, c.ParseErr
			}
			reporter.Warnf("Ignoring tag %s: %s", c.Name, c.ParseErr)
			continue
		}
		if selected < 0 || c.Better(candidates[selected]) {
			selected = i
		}
	}
	if selected < 0 {
		return -1, ErrNoTagsReachable
	}
	return selected, nil
}

// Package gitver derives versions from the tags and history of git repositories.
//
// The derived version is the name of the greatest annotated tag reachable from HEAD, optionally
// followed by `-<count>-g<hash>` for the commits made since the tag, and by a marker for
// uncommitted changes in the worktree:
//
//	1.1.1
//	1.1.1-2-g1a2b3c4
//	1.1.1-2-g1a2b3c4-DIRTY-0f9e8d7c
package gitver

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/heronman/version-from-git/internal/clients/git"
)

// Derive derives a version from the git repository at the path. If there is no repository at the
// path, or if no annotated tag is reachable from HEAD, the fallback version from the options is
// returned instead. Tag names which aren't versions make Derive fail with a
// [versioning.ParseError], unless the options say to ignore them. A nil reporter discards all
// messages.
func Derive(repoPath string, opts Options, reporter Reporter) (version string, err error) {
	if reporter == nil {
		reporter = NopReporter{}
	}
	detector, err := opts.Dirty.detector(opts.Digest)
	if err != nil {
		return "", err
	}

	repo, err := openRepo(repoPath, opts)
	if err != nil {
		if errors.Is(err, ErrRepositoryNotFound) {
			reporter.Warnf(
				"No git repository found in %s, falling back to default version %s",
				repoPath, opts.FallbackVersion,
			)
			return opts.FallbackVersion, nil
		}
		return "", err
	}
	defer func() {
		_ = repo.Close()
	}()

	version, err = derive(repo, opts, detector, reporter)
	if err != nil {
		if errors.Is(err, ErrNoTagsReachable) {
			reporter.Warnf(
				"No tags found, falling back to default version %s", opts.FallbackVersion,
			)
			return opts.FallbackVersion, nil
		}
		return "", errors.Wrapf(err, "couldn't derive version from git repo at %s", repoPath)
	}
	reporter.Result(version)
	return version, nil
}

func derive(
	repo *git.Repo, opts Options, detector dirtinessDetector, reporter Reporter,
) (string, error) {
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, git.ErrNoCommits) {
			return "", ErrNoTagsReachable
		}
		return "", err
	}
	reporter.Infof("Deriving version from %s", git.StringifyRef(head))

	candidates, err := collectCandidates(repo, head.Hash(), opts.Match)
	if err != nil {
		return "", err
	}
	selected, err := selectCandidate(candidates, opts.IgnoreInvalidTags, reporter)
	if err != nil {
		return "", err
	}
	current := candidates[selected]
	if current.Version.IsSnapshot() {
		reporter.Infof("SNAPSHOT version found. Skipping further calculations")
		return current.Name, nil
	}

	version := strings.Builder{}
	version.WriteString(current.Name)
	if opts.CommitsNo {
		count, err := repo.CountCommitsBetween(current.Commit, head.Hash())
		if err != nil {
			return "", errors.Wrapf(err, "couldn't count commits since tag %s", current.Name)
		}
		if count > 0 {
			version.WriteString("-")
			version.WriteString(strconv.Itoa(count))
			version.WriteString("-g")
			version.WriteString(git.AbbreviateHash(head.Hash()))
		}
	}

	suffix, err := detector.suffix(repo)
	if err != nil {
		return "", err
	}
	version.WriteString(suffix)
	return version.String(), nil
}

package gitver

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/heronman/version-from-git/internal/clients/git/gittest"
	"github.com/heronman/version-from-git/pkg/versioning"
)

type recordingReporter struct {
	mu       sync.Mutex
	infos    []string
	warnings []string
	results  []string
}

func (r *recordingReporter) Infof(format string, a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, fmt.Sprintf(format, a...))
}

func (r *recordingReporter) Warnf(format string, a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, a...))
}

func (r *recordingReporter) Result(version string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, version)
}

func derived(t *testing.T, r *gittest.Repo, opts Options) string {
	t.Helper()
	version, err := Derive(r.Path, opts, nil)
	require.NoError(t, err)
	return version
}

func TestDeriveFallback(t *testing.T) {
	t.Parallel()
	for name, setup := range map[string]func(t *testing.T) string{
		"no repository": func(t *testing.T) string { return t.TempDir() },
		"empty repository": func(t *testing.T) string {
			return gittest.Init(t).Path
		},
		"no tags": func(t *testing.T) string {
			r := gittest.Init(t)
			r.Commit("test.txt", "some-text")
			return r.Path
		},
		"lightweight tags only": func(t *testing.T) string {
			r := gittest.Init(t)
			r.Commit("test.txt", "some-text")
			r.LightweightTag("1.0.0")
			return r.Path
		},
		"no matching tags": func(t *testing.T) string {
			r := gittest.Init(t)
			r.Commit("test.txt", "some-text")
			r.Tag("1.0.0")
			return r.Path
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultOptions()
			opts.Match = "v*"
			reporter := &recordingReporter{}
			version, err := Derive(setup(t), opts, reporter)
			require.NoError(t, err)
			require.Equal(t, DefaultFallbackVersion, version)
			require.Len(t, reporter.warnings, 1)
			require.Empty(t, reporter.results)
		})
	}
}

func TestDeriveCustomFallback(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()
	opts.FallbackVersion = "0.1.0-dev"
	version, err := Derive(t.TempDir(), opts, nil)
	require.NoError(t, err)
	require.Equal(t, "0.1.0-dev", version)
}

func TestDeriveTagOnHead(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.1.1")

	reporter := &recordingReporter{}
	version, err := Derive(r.Path, DefaultOptions(), reporter)
	require.NoError(t, err)
	require.Equal(t, "1.1.1", version)
	require.Equal(t, []string{"1.1.1"}, reporter.results)
}

func TestDeriveCommitsAfterTag(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.1.1")

	for i := 1; i <= 2; i++ {
		head := r.Commit(fmt.Sprintf("test%d.txt", i), "some-text")
		require.Equal(
			t, fmt.Sprintf("1.1.1-%d-g%s", i, gittest.Short(head)), derived(t, r, DefaultOptions()),
		)
	}

	t.Log("without commit counting")
	opts := DefaultOptions()
	opts.CommitsNo = false
	require.Equal(t, "1.1.1", derived(t, r, opts))
}

func TestDeriveGreatestTag(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.1.1")
	require.Equal(t, "1.1.1", derived(t, r, DefaultOptions()))

	r.Commit("test2.txt", "some-text")
	r.Tag("1.1.2")
	require.Equal(t, "1.1.2", derived(t, r, DefaultOptions()))

	r.Tag("1.0.1")
	require.Equal(t, "1.1.2", derived(t, r, DefaultOptions()))
}

func TestDeriveSelectsByVersionNotRecency(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.1.1")
	head := r.Commit("test2.txt", "some-text")
	r.Tag("1.0.1")

	require.Equal(t, "1.1.1-1-g"+gittest.Short(head), derived(t, r, DefaultOptions()))
}

func TestDeriveBranchIsolation(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.1.1")

	r.Branch("alt")
	require.Equal(t, "1.1.1", derived(t, r, DefaultOptions()))
	r.Commit("test2.txt", "some-text")
	r.Tag("2.2.2")
	require.Equal(t, "2.2.2", derived(t, r, DefaultOptions()))

	r.Checkout("master")
	require.Equal(t, "1.1.1", derived(t, r, DefaultOptions()))
	head := r.Commit("test3.txt", "some-text")
	require.Equal(t, "1.1.1-1-g"+gittest.Short(head), derived(t, r, DefaultOptions()))
}

func TestDeriveBackMerge(t *testing.T) {
	t.Parallel()
	setup := func(t *testing.T) *gittest.Repo {
		r := gittest.Init(t)
		r.Commit("test.txt", "some-text")
		r.Tag("0.0.2")
		r.Branch("alt")
		r.Commit("test2.txt", "some-other-text")
		r.Tag("0.0.1") // tagged after 0.0.2
		r.Checkout("master")
		return r
	}

	t.Run("fast-forward", func(t *testing.T) {
		t.Parallel()
		r := setup(t)
		r.FastForward("alt")
		require.Equal(t, "0.0.2-1-g"+gittest.Short(r.Head()), derived(t, r, DefaultOptions()))
	})

	t.Run("merge commit", func(t *testing.T) {
		t.Parallel()
		r := setup(t)
		head := r.Merge("alt")
		require.Equal(t, "0.0.2-2-g"+gittest.Short(head), derived(t, r, DefaultOptions()))
	})
}

func TestDeriveCountsFromSelectedTag(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("2.0.0")
	r.Commit("test2.txt", "some-text")
	r.Tag("1.5.0") // more recent, but lower
	head := r.Commit("test3.txt", "some-text")

	require.Equal(t, "2.0.0-2-g"+gittest.Short(head), derived(t, r, DefaultOptions()))
}

func TestDeriveSameCommitTieBreak(t *testing.T) {
	t.Parallel()
	for name, test := range map[string]struct {
		tags []string
		want string
	}{
		"prefixed last":   {tags: []string{"1.0", "v1.0"}, want: "v1.0"},
		"unprefixed last": {tags: []string{"v1.0", "1.0"}, want: "1.0"},
		"version first":   {tags: []string{"1.1", "1.0"}, want: "1.1"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := gittest.Init(t)
			r.Commit("test.txt", "some-text")
			for _, tag := range test.tags {
				r.Tag(tag)
			}
			require.Equal(t, test.want, derived(t, r, DefaultOptions()))
		})
	}
}

func TestDeriveSnapshot(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.0.0")
	r.Commit("test2.txt", "some-text")
	r.Tag("1.1.0-SNAPSHOT")
	r.Commit("test3.txt", "some-text")
	r.WriteFile("test3.txt", "changed")

	reporter := &recordingReporter{}
	version, err := Derive(r.Path, DefaultOptions(), reporter)
	require.NoError(t, err)
	require.Equal(t, "1.1.0-SNAPSHOT", version)
	require.Len(t, reporter.infos, 2)
	require.Equal(t, "Deriving version from (branch) master -> (commit) "+gittest.Short(r.Head()), reporter.infos[0])
	require.Contains(t, reporter.infos[1], "SNAPSHOT")
}

func TestDeriveInvalidTags(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.0.0")
	r.Tag("release-candidate")

	_, err := Derive(r.Path, DefaultOptions(), nil)
	var perr *versioning.ParseError
	require.True(t, errors.As(err, &perr), "unexpected error: %v", err)
	require.Equal(t, 0, perr.Pos)

	t.Log("ignoring invalid tags")
	opts := DefaultOptions()
	opts.IgnoreInvalidTags = true
	reporter := &recordingReporter{}
	version, err := Derive(r.Path, opts, reporter)
	require.NoError(t, err)
	require.Equal(t, "1.0.0", version)
	require.Len(t, reporter.warnings, 1)

	t.Log("matching tags")
	opts = DefaultOptions()
	opts.Match = "[0-9]*"
	require.Equal(t, "1.0.0", derived(t, r, opts))
}

func TestDeriveUnreachableInvalidTag(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.0.0")
	r.Branch("alt")
	r.Commit("test2.txt", "some-text")
	r.Tag("experiment")
	r.Checkout("master")

	require.Equal(t, "1.0.0", derived(t, r, DefaultOptions()))
}

var dirtyHashPattern = regexp.MustCompile(`^1\.0\.0-DIRTY-[0-9a-f]{8}$`)

func TestDeriveDirtyHash(t *testing.T) {
	t.Parallel()
	setup := func(t *testing.T) *gittest.Repo {
		r := gittest.Init(t)
		r.Commit("test.txt", "some-text\n")
		r.Tag("1.0.0")
		return r
	}
	first := setup(t)
	second := setup(t)
	third := setup(t)
	require.Equal(t, first.Head(), second.Head())
	require.Equal(t, "1.0.0", derived(t, first, DefaultOptions()))

	first.WriteFile("test.txt", "some-changed-text\n")
	second.WriteFile("test.txt", "some-changed-text\n")
	third.WriteFile("other.txt", "unrelated\n")
	firstVersion := derived(t, first, DefaultOptions())
	require.Regexp(t, dirtyHashPattern, firstVersion)
	require.Equal(t, firstVersion, derived(t, second, DefaultOptions()))
	thirdVersion := derived(t, third, DefaultOptions())
	require.Regexp(t, dirtyHashPattern, thirdVersion)
	require.NotEqual(t, firstVersion, thirdVersion)

	t.Log("with blake3 digests")
	opts := DefaultOptions()
	opts.Digest = DigestBLAKE3
	blake3Version := derived(t, first, opts)
	require.Regexp(t, dirtyHashPattern, blake3Version)
	require.NotEqual(t, firstVersion, blake3Version)

	t.Log("with staged changes only")
	first.Stage("test.txt")
	require.Equal(t, "1.0.0", derived(t, first, DefaultOptions()))
}

func TestDeriveDirtyFlag(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.0.0")
	opts := DefaultOptions()
	opts.Dirty = DirtyFlag
	require.Equal(t, "1.0.0", derived(t, r, opts))

	r.WriteFile("new.txt", "untracked")
	require.Equal(t, "1.0.0-DIRTY", derived(t, r, opts))

	head := r.Commit("new.txt", "untracked")
	require.Equal(t, "1.0.0-1-g"+gittest.Short(head), derived(t, r, opts))

	r.RemoveFile("new.txt")
	require.Equal(t, "1.0.0-1-g"+gittest.Short(head)+"-DIRTY", derived(t, r, opts))

	opts.Dirty = DirtyNone
	require.Equal(t, "1.0.0-1-g"+gittest.Short(head), derived(t, r, opts))
}

func TestDeriveInvalidOptions(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()
	opts.Dirty = "sometimes"
	_, err := Derive(t.TempDir(), opts, nil)
	require.Error(t, err)

	opts = DefaultOptions()
	opts.Digest = "crc32"
	_, err = Derive(t.TempDir(), opts, nil)
	require.Error(t, err)
}

func TestDeriveConcurrently(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.0.0")
	head := r.Commit("test2.txt", "some-text")
	want := "1.0.0-1-g" + gittest.Short(head)

	var wg sync.WaitGroup
	versions := make([]string, 8)
	errs := make([]error, len(versions))
	for i := range versions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			versions[i], errs[i] = Derive(r.Path, DefaultOptions(), nil)
		}()
	}
	wg.Wait()
	for i := range versions {
		require.NoError(t, errs[i])
		require.Equal(t, want, versions[i])
	}
}

func TestListCandidates(t *testing.T) {
	t.Parallel()
	r := gittest.Init(t)
	r.Commit("test.txt", "some-text")
	r.Tag("1.0.0")
	r.Branch("alt")
	r.Commit("test2.txt", "some-text")
	r.Tag("2.0.0")
	r.Checkout("master")
	r.Commit("test3.txt", "some-text")
	r.Tag("1.1.0")
	r.Tag("nightly")

	candidates, err := ListCandidates(r.Path, DefaultOptions())
	require.NoError(t, err)
	byName := make(map[string]Candidate)
	for _, c := range candidates {
		byName[c.Name] = c
	}
	require.Len(t, byName, 4)
	require.True(t, byName["1.0.0"].Reachable)
	require.False(t, byName["2.0.0"].Reachable)
	require.True(t, byName["1.1.0"].Reachable)
	require.True(t, byName["1.1.0"].Selected)
	require.False(t, byName["1.0.0"].Selected)
	require.Error(t, byName["nightly"].ParseErr)

	_, err = ListCandidates(t.TempDir(), DefaultOptions())
	require.ErrorIs(t, err, ErrRepositoryNotFound)
}

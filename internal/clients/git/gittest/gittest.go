// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Epoch is the time of the first commit or tag made in a Repo. Every later commit or tag is made
// one minute after the previous one.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// A Repo is a non-bare repository in a temporary directory.
type Repo struct {
	t        testing.TB
	Path     string
	Repo     *git.Repository
	Worktree *git.Worktree
	clock    time.Time
}

// Init creates an empty repository on branch master.
func Init(t testing.TB) *Repo {
	t.Helper()
	path := t.TempDir()
	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	return &Repo{t: t, Path: path, Repo: repo, Worktree: worktree, clock: Epoch}
}

func (r *Repo) signature() *object.Signature {
	r.clock = r.clock.Add(time.Minute)
	return &object.Signature{Name: "Test", Email: "test@example.com", When: r.clock}
}

// WriteFile writes a file in the worktree without staging it.
func (r *Repo) WriteFile(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.Path, filepath.FromSlash(name))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o644))
}

// RemoveFile deletes a file from the worktree without staging the deletion.
func (r *Repo) RemoveFile(name string) {
	r.t.Helper()
	require.NoError(r.t, os.Remove(filepath.Join(r.Path, filepath.FromSlash(name))))
}

// Stage adds the file's worktree contents to the index.
func (r *Repo) Stage(name string) {
	r.t.Helper()
	_, err := r.Worktree.Add(name)
	require.NoError(r.t, err)
}

// Commit writes, stages and commits a file, returning the new commit.
func (r *Repo) Commit(name, content string) plumbing.Hash {
	r.t.Helper()
	r.WriteFile(name, content)
	r.Stage(name)
	hash, err := r.Worktree.Commit("add "+name, &git.CommitOptions{Author: r.signature()})
	require.NoError(r.t, err)
	return hash
}

// Merge makes a merge commit of HEAD and the tip of the branch, with a file added on top.
func (r *Repo) Merge(branch string) plumbing.Hash {
	r.t.Helper()
	head := r.Head()
	other, err := r.Repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(r.t, err)
	r.WriteFile("merge-"+branch+".txt", branch)
	r.Stage("merge-" + branch + ".txt")
	hash, err := r.Worktree.Commit("merge "+branch, &git.CommitOptions{
		Author:  r.signature(),
		Parents: []plumbing.Hash{head, other.Hash()},
	})
	require.NoError(r.t, err)
	return hash
}

// FastForward moves the current branch to the tip of the other branch, like a fast-forward merge.
func (r *Repo) FastForward(branch string) {
	r.t.Helper()
	other, err := r.Repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(r.t, err)
	require.NoError(r.t, r.Worktree.Reset(&git.ResetOptions{
		Commit: other.Hash(),
		Mode:   git.HardReset,
	}))
}

// Head returns the commit at HEAD.
func (r *Repo) Head() plumbing.Hash {
	r.t.Helper()
	ref, err := r.Repo.Head()
	require.NoError(r.t, err)
	return ref.Hash()
}

// Branch creates a branch at HEAD and checks it out.
func (r *Repo) Branch(name string) {
	r.t.Helper()
	require.NoError(r.t, r.Worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}))
}

// Checkout checks out an existing branch.
func (r *Repo) Checkout(name string) {
	r.t.Helper()
	require.NoError(r.t, r.Worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	}))
}

// Tag makes an annotated tag at HEAD.
func (r *Repo) Tag(name string) {
	r.t.Helper()
	r.TagAt(name, r.Head())
}

// TagAt makes an annotated tag at the commit.
func (r *Repo) TagAt(name string, commit plumbing.Hash) {
	r.t.Helper()
	_, err := r.Repo.CreateTag(name, commit, &git.CreateTagOptions{
		Tagger:  r.signature(),
		Message: "version tag",
	})
	require.NoError(r.t, err)
}

// LightweightTag makes a lightweight tag at HEAD.
func (r *Repo) LightweightTag(name string) {
	r.t.Helper()
	_, err := r.Repo.CreateTag(name, r.Head(), nil)
	require.NoError(r.t, err)
}

// Short returns the abbreviated hash of the commit.
func Short(h plumbing.Hash) string {
	return h.String()[:7]
}

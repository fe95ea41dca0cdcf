package git

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/utils/binary"
	udiff "github.com/go-git/go-git/v5/utils/diff"
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// WorktreeDiff writes a unified diff from the index to the worktree, covering every modified,
// missing and untracked (but not ignored) file. A missing file whose exact contents reappear at an
// untracked path is reported as a rename. File patches are ordered by path, so the output only
// depends on the contents of the index and the worktree. WorktreeDiff returns the number of file
// patches written; nothing is written when there are none.
func (r *Repo) WorktreeDiff(w io.Writer) (files int, err error) {
	worktree, err := r.repository.Worktree()
	if err != nil {
		return 0, errors.Wrap(err, "couldn't open worktree")
	}
	status, err := worktree.Status()
	if err != nil {
		return 0, errors.Wrap(err, "couldn't determine worktree status")
	}
	idx, err := r.repository.Storer.Index()
	if err != nil {
		return 0, errors.Wrap(err, "couldn't read index")
	}
	entries := make(map[string]*index.Entry, len(idx.Entries))
	for _, entry := range idx.Entries {
		entries[entry.Name] = entry
	}

	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	patches := make([]*filePatch, 0)
	missing := make([]*diffFile, 0)
	untracked := make([]*diffFile, 0)
	for _, path := range paths {
		switch status[path].Worktree {
		case git.Modified:
			var from *diffFile
			if entry, ok := entries[path]; ok {
				if from, err = r.loadIndexFile(entry); err != nil {
					return 0, err
				}
			}
			to, err := loadWorktreeFile(worktree, path)
			if err != nil {
				return 0, err
			}
			patches = append(patches, newFilePatch(from, to))
		case git.Deleted:
			entry, ok := entries[path]
			if !ok {
				continue
			}
			from, err := r.loadIndexFile(entry)
			if err != nil {
				return 0, err
			}
			missing = append(missing, from)
		case git.Untracked:
			to, err := loadWorktreeFile(worktree, path)
			if err != nil {
				return 0, err
			}
			untracked = append(untracked, to)
		}
	}
	patches = append(patches, detectRenames(missing, untracked)...)
	if len(patches) == 0 {
		return 0, nil
	}
	slices.SortFunc(patches, func(a, b *filePatch) int {
		return strings.Compare(a.path(), b.path())
	})

	encoder := fdiff.NewUnifiedEncoder(w, fdiff.DefaultContextLines)
	if err = encoder.Encode(patch(patches)); err != nil {
		return 0, errors.Wrap(err, "couldn't encode worktree diff")
	}
	return len(patches), nil
}

// detectRenames pairs each missing file with an untracked file of identical contents. Unpaired
// files are reported as deletions and additions.
func detectRenames(missing, untracked []*diffFile) []*filePatch {
	byHash := make(map[plumbing.Hash][]*diffFile)
	for _, file := range untracked {
		byHash[file.hash] = append(byHash[file.hash], file)
	}
	renamed := make(map[*diffFile]bool)
	patches := make([]*filePatch, 0, len(missing)+len(untracked))
	for _, from := range missing {
		candidates := byHash[from.hash]
		if len(candidates) == 0 {
			patches = append(patches, newFilePatch(from, nil))
			continue
		}
		to := candidates[0]
		byHash[from.hash] = candidates[1:]
		renamed[to] = true
		patches = append(patches, newFilePatch(from, to))
	}
	for _, to := range untracked {
		if renamed[to] {
			continue
		}
		patches = append(patches, newFilePatch(nil, to))
	}
	return patches
}

// Files

type diffFile struct {
	path     string
	hash     plumbing.Hash
	mode     filemode.FileMode
	content  []byte
	isBinary bool
}

func newDiffFile(path string, mode filemode.FileMode, content []byte) (*diffFile, error) {
	isBinary, err := binary.IsBinary(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't check whether %s is binary", path)
	}
	return &diffFile{
		path:     path,
		hash:     plumbing.ComputeHash(plumbing.BlobObject, content),
		mode:     mode,
		content:  content,
		isBinary: isBinary,
	}, nil
}

func (r *Repo) loadIndexFile(entry *index.Entry) (*diffFile, error) {
	if entry.Mode == filemode.Submodule {
		return newDiffFile(
			entry.Name, entry.Mode, fmt.Appendf(nil, "Subproject commit %s\n", entry.Hash),
		)
	}
	blob, err := r.repository.BlobObject(entry.Hash)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't load indexed blob of %s", entry.Name)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open indexed blob of %s", entry.Name)
	}
	defer func() {
		_ = reader.Close()
	}()
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read indexed blob of %s", entry.Name)
	}
	return newDiffFile(entry.Name, entry.Mode, content)
}

func loadWorktreeFile(worktree *git.Worktree, path string) (*diffFile, error) {
	fsys := worktree.Filesystem
	info, err := fsys.Lstat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't stat %s", path)
	}
	mode, err := filemode.NewFromOSFileMode(info.Mode())
	if err != nil {
		mode = filemode.Regular
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := fsys.Readlink(path)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't read symlink %s", path)
		}
		return newDiffFile(path, mode, []byte(target))
	}

	file, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open %s", path)
	}
	defer func() {
		_ = file.Close()
	}()
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read %s", path)
	}
	return newDiffFile(path, mode, content)
}

// diffFile: fdiff.File

func (f *diffFile) Hash() plumbing.Hash {
	return f.hash
}

func (f *diffFile) Mode() filemode.FileMode {
	return f.mode
}

func (f *diffFile) Path() string {
	return f.path
}

// Patches

type patch []*filePatch

// patch: fdiff.Patch

func (p patch) FilePatches() []fdiff.FilePatch {
	filePatches := make([]fdiff.FilePatch, 0, len(p))
	for _, fp := range p {
		filePatches = append(filePatches, fp)
	}
	return filePatches
}

func (p patch) Message() string {
	return ""
}

type filePatch struct {
	from   *diffFile
	to     *diffFile
	chunks []fdiff.Chunk
}

func newFilePatch(from, to *diffFile) *filePatch {
	fp := &filePatch{from: from, to: to}
	if fp.IsBinary() {
		return fp
	}
	var src, dst string
	if from != nil {
		src = string(from.content)
	}
	if to != nil {
		dst = string(to.content)
	}
	for _, d := range udiff.Do(src, dst) {
		c := chunk{content: d.Text}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			c.op = fdiff.Equal
		case diffmatchpatch.DiffDelete:
			c.op = fdiff.Delete
		case diffmatchpatch.DiffInsert:
			c.op = fdiff.Add
		}
		fp.chunks = append(fp.chunks, c)
	}
	return fp
}

func (p *filePatch) path() string {
	if p.to != nil {
		return p.to.path
	}
	return p.from.path
}

// filePatch: fdiff.FilePatch

func (p *filePatch) IsBinary() bool {
	return (p.from != nil && p.from.isBinary) || (p.to != nil && p.to.isBinary)
}

func (p *filePatch) Files() (from, to fdiff.File) {
	// nil pointers must become nil interfaces for the encoder to recognize additions and deletions
	if p.from != nil {
		from = p.from
	}
	if p.to != nil {
		to = p.to
	}
	return from, to
}

func (p *filePatch) Chunks() []fdiff.Chunk {
	return p.chunks
}

type chunk struct {
	content string
	op      fdiff.Operation
}

// chunk: fdiff.Chunk

func (c chunk) Content() string {
	return c.content
}

func (c chunk) Type() fdiff.Operation {
	return c.op
}

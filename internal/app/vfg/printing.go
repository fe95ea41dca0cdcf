package vfg

import (
	"io"
	"slices"
	"time"

	"github.com/heronman/version-from-git/internal/clients/cli"
	"github.com/heronman/version-from-git/internal/clients/git"
	"github.com/heronman/version-from-git/pkg/gitver"
	"github.com/heronman/version-from-git/pkg/versioning"
)

// Candidate tags

// FprintCandidates prints the tags which were considered when deriving a version. Tags reachable
// from HEAD come first, best first.
func FprintCandidates(indent int, out io.Writer, candidates []gitver.Candidate) {
	if len(candidates) == 0 {
		cli.IndentedFprintln(indent, out, "(no annotated tags)")
		return
	}
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b gitver.Candidate) int {
		switch {
		case a.Reachable != b.Reachable:
			if a.Reachable {
				return -1
			}
			return 1
		case (a.ParseErr == nil) != (b.ParseErr == nil):
			if a.ParseErr == nil {
				return -1
			}
			return 1
		case a.Better(b):
			return -1
		case b.Better(a):
			return 1
		}
		return 0
	})
	for _, c := range sorted {
		fprintCandidate(indent, out, c)
	}
}

func fprintCandidate(indent int, out io.Writer, c gitver.Candidate) {
	marker := ""
	if c.Selected {
		marker = " (current)"
	}
	cli.BulletedFprintf(indent, out, "%s%s\n", c.Name, marker)
	indent++
	cli.IndentedFprintf(indent, out, "Commit: %s\n", git.AbbreviateHash(c.Commit))
	cli.IndentedFprintf(indent, out, "Tagged: %s\n", c.Tagged.Format(time.RFC3339))
	if c.Reachable {
		cli.IndentedFprintln(indent, out, "Reachable from HEAD: yes")
	} else {
		cli.IndentedFprintln(indent, out, "Reachable from HEAD: no")
	}
	if c.ParseErr != nil {
		cli.IndentedFprintf(indent, out, "Invalid version: %s\n", c.ParseErr)
	}
}

// Versions

type versionDescription struct {
	Text       string  `yaml:"text"`
	Components []int   `yaml:"components,flow"`
	Suffix     *string `yaml:"suffix,omitempty"`
	Prefixed   bool    `yaml:"prefixed"`
	Snapshot   bool    `yaml:"snapshot"`
	Semver     string  `yaml:"semver,omitempty"`
	GoVersion  string  `yaml:"go-version,omitempty"`
}

func describeVersion(v versioning.Version) versionDescription {
	d := versionDescription{
		Text:       v.String(),
		Components: v.Components(),
		Prefixed:   v.HasPrefix(),
		Snapshot:   v.IsSnapshot(),
		GoVersion:  v.GoVersion(),
	}
	if suffix, ok := v.Suffix(); ok {
		d.Suffix = &suffix
	}
	if semver, err := v.Semver(); err == nil {
		d.Semver = semver.String()
	}
	return d
}

// FprintVersion prints the parsed structure of the version as a YAML document.
func FprintVersion(indent int, out io.Writer, v versioning.Version) error {
	return cli.IndentedFprintYaml(indent, out, describeVersion(v))
}

// CompareSymbol describes how the version a orders relative to b: "<", ">", "=" for equal versions,
// or "~" for versions which are not equal but where neither is greater (like "1.0" and "v1.0").
func CompareSymbol(a, b versioning.Version) string {
	switch a.Compare(b) {
	case -1:
		return "<"
	case 1:
		return ">"
	}
	if a.Equal(b) {
		return "="
	}
	return "~"
}

package main

import (
	"log"
	"os"
	"runtime/debug"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var app = &cli.App{
	Name:    "version-from-git",
	Version: toolVersion,
	Usage:   "Derives build versions from the annotated tags of git repositories",
	Description: "Prints a version for each repository path (the current directory by default): the " +
		"greatest annotated tag reachable from HEAD, followed by the number of commits since " +
		"that tag with the abbreviated hash of HEAD, followed by a marker for uncommitted changes.",
	ArgsUsage: "[repo_path...]",
	Flags:     deriveFlags,
	Action:    deriveAction,
	Commands: []*cli.Command{
		{
			Name:      "derive",
			Category:  "Derive versions",
			Usage:     "Prints the version derived from each repository",
			ArgsUsage: "[repo_path...]",
			Flags:     deriveFlags,
			Action:    deriveAction,
		},
		{
			Name:      "tags",
			Aliases:   []string{"ls-tags"},
			Category:  "Inspect",
			Usage:     "Lists the annotated tags which could identify the current version",
			ArgsUsage: "[repo_path]",
			Flags:     deriveFlags,
			Action:    tagsAction,
		},
		{
			Name:      "parse",
			Category:  "Inspect",
			Usage:     "Describes how versions are parsed",
			ArgsUsage: "version...",
			Action:    parseAction,
		},
		{
			Name:      "compare",
			Category:  "Inspect",
			Usage:     "Prints how two versions are ordered",
			ArgsUsage: "version version",
			Action:    compareAction,
		},
	},
	Suggest: true,
}

// Versioning

// fallbackVersion is the version which the tool reports itself as if its actual version is
// unknown.
const fallbackVersion = "v0.1.0-dev"

var (
	toolVersion = determineVersion(buildSummary, fallbackVersion)
	// buildSummary should be overridden by ldflags, such as with GoReleaser's "Summary".
	buildSummary = ""
)

// determineVersion returns either a semver, a pseudoversion, or a Git hash based on information
// available from Go's `debug.ReadBuildInfo()`.
func determineVersion(override, fallback string) string {
	if override != "" {
		return override
	}

	const dirtySuffix = "-dirty"
	if info, ok := debug.ReadBuildInfo(); ok &&
		info.Main.Version != "" && info.Main.Version != "(devel)" {
		v := info.Main.Version
		if versioninfo.DirtyBuild {
			v += dirtySuffix
		}
		return v
	}
	if v := versioninfo.Version; v != "unknown" && v != "(devel)" {
		if versioninfo.DirtyBuild {
			v += dirtySuffix
		}
		return v
	}

	if r := versioninfo.Revision; r != "unknown" && r != "" {
		if versioninfo.DirtyBuild {
			r += dirtySuffix
		}
		return r
	}
	return fallback
}

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/heronman/version-from-git/internal/app/vfg"
	fcli "github.com/heronman/version-from-git/internal/clients/cli"
	"github.com/heronman/version-from-git/pkg/gitver"
)

var deriveFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path of a configuration file to use instead of " + vfg.ConfigFile + " in the repository",
		EnvVars: []string{"VFG_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "commits-no",
		Value:   true,
		Usage:   "Append the number of commits since the tag and the abbreviated hash of HEAD",
		EnvVars: []string{"VFG_COMMITS_NO"},
	},
	&cli.StringFlag{
		Name:  "dirty",
		Value: string(gitver.DirtyHash),
		Usage: fmt.Sprintf(
			"How to mark uncommitted changes: %s, %s (-DIRTY) or %s (-DIRTY-<hash>)",
			gitver.DirtyNone, gitver.DirtyFlag, gitver.DirtyHash,
		),
		EnvVars: []string{"VFG_DIRTY"},
	},
	&cli.StringFlag{
		Name:    "digest",
		Value:   string(gitver.DigestMD5),
		Usage:   fmt.Sprintf("Hash of uncommitted changes: %s or %s", gitver.DigestMD5, gitver.DigestBLAKE3),
		EnvVars: []string{"VFG_DIGEST"},
	},
	&cli.StringFlag{
		Name:    "fallback-version",
		Aliases: []string{"fallback"},
		Value:   gitver.DefaultFallbackVersion,
		Usage:   "Version to print if there is no repository or no reachable tag",
		EnvVars: []string{"VFG_FALLBACK_VERSION"},
	},
	&cli.StringFlag{
		Name:    "match",
		Usage:   "Only consider tags matching the glob pattern",
		EnvVars: []string{"VFG_MATCH"},
	},
	&cli.BoolFlag{
		Name:    "ignore-invalid-tags",
		Usage:   "Skip tags which aren't versions instead of failing",
		EnvVars: []string{"VFG_IGNORE_INVALID_TAGS"},
	},
	&cli.BoolFlag{
		Name:    "detect-dot-git",
		Usage:   "Search parent directories for the repository",
		EnvVars: []string{"VFG_DETECT_DOT_GIT"},
	},
	&cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "Don't print progress messages",
		EnvVars: []string{"VFG_QUIET"},
	},
}

// makeOverrides turns the flags which were set explicitly into option overrides, so that flag
// defaults don't mask values from configuration files.
func makeOverrides(c *cli.Context) []vfg.Override {
	overrides := make([]vfg.Override, 0)
	if c.IsSet("commits-no") {
		value := c.Bool("commits-no")
		overrides = append(overrides, func(opts *gitver.Options) { opts.CommitsNo = value })
	}
	if c.IsSet("dirty") {
		value := gitver.DirtyMode(c.String("dirty"))
		overrides = append(overrides, func(opts *gitver.Options) { opts.Dirty = value })
	}
	if c.IsSet("digest") {
		value := gitver.DigestAlgorithm(c.String("digest"))
		overrides = append(overrides, func(opts *gitver.Options) { opts.Digest = value })
	}
	if c.IsSet("fallback-version") {
		value := c.String("fallback-version")
		overrides = append(overrides, func(opts *gitver.Options) { opts.FallbackVersion = value })
	}
	if c.IsSet("match") {
		value := c.String("match")
		overrides = append(overrides, func(opts *gitver.Options) { opts.Match = value })
	}
	if c.IsSet("ignore-invalid-tags") {
		value := c.Bool("ignore-invalid-tags")
		overrides = append(overrides, func(opts *gitver.Options) { opts.IgnoreInvalidTags = value })
	}
	if c.IsSet("detect-dot-git") {
		value := c.Bool("detect-dot-git")
		overrides = append(overrides, func(opts *gitver.Options) { opts.DetectDotGit = value })
	}
	return overrides
}

func repoPaths(c *cli.Context) []string {
	if c.Args().Present() {
		return c.Args().Slice()
	}
	return []string{"."}
}

func deriveAction(c *cli.Context) error {
	paths := repoPaths(c)
	quiet := c.Bool("quiet")
	labeled := len(paths) > 1
	versions, err := vfg.DeriveAll(
		paths, c.String("config"), makeOverrides(c),
		func(path string) gitver.Reporter {
			if quiet {
				return gitver.NopReporter{}
			}
			if labeled {
				return fcli.NewReporter(os.Stderr, path)
			}
			return fcli.NewReporter(os.Stderr, "")
		},
	)
	if err != nil {
		return err
	}
	for _, version := range versions {
		fmt.Println(version)
	}
	return nil
}

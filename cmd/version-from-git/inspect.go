package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/heronman/version-from-git/internal/app/vfg"
	fcli "github.com/heronman/version-from-git/internal/clients/cli"
	"github.com/heronman/version-from-git/pkg/gitver"
	"github.com/heronman/version-from-git/pkg/versioning"
)

// tags

func tagsAction(c *cli.Context) error {
	if c.Args().Len() > 1 {
		return errors.Errorf("expected at most one repository path, got %d", c.Args().Len())
	}
	path := repoPaths(c)[0]
	opts, err := vfg.LoadOptions(path, c.String("config"), makeOverrides(c)...)
	if err != nil {
		return err
	}
	candidates, err := gitver.ListCandidates(path, opts)
	if err != nil {
		return errors.Wrapf(err, "couldn't list tags of %s", path)
	}
	vfg.FprintCandidates(0, os.Stdout, candidates)
	return nil
}

// parse

func parseAction(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("no versions were provided")
	}
	texts := c.Args().Slice()
	for _, text := range texts {
		v, err := versioning.Parse(text)
		if err != nil {
			return err
		}
		indent := 0
		if len(texts) > 1 {
			fcli.BulletedFprintf(0, os.Stdout, "%q:\n", text)
			indent = 1
		}
		if err = vfg.FprintVersion(indent, os.Stdout, v); err != nil {
			return errors.Wrapf(err, "couldn't print version %s", text)
		}
	}
	return nil
}

// compare

func compareAction(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return errors.Errorf("expected two versions, got %d", c.Args().Len())
	}
	a, err := versioning.Parse(c.Args().Get(0))
	if err != nil {
		return err
	}
	b, err := versioning.Parse(c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Printf("%s %s %s\n", a, vfg.CompareSymbol(a, b), b)
	return nil
}

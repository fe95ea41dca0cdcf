package vfg

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/heronman/version-from-git/pkg/gitver"
)

// DeriveAll derives the versions of the repos at the paths concurrently, returning them in the
// order of the paths. Options are loaded for each repo separately.
func DeriveAll(
	paths []string, configPath string, overrides []Override,
	reporterFor func(path string) gitver.Reporter,
) ([]string, error) {
	versions := make([]string, len(paths))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		eg.Go(func() error {
			opts, err := LoadOptions(path, configPath, overrides...)
			if err != nil {
				return errors.Wrapf(err, "couldn't determine options for %s", path)
			}
			if versions[i], err = gitver.Derive(path, opts, reporterFor(path)); err != nil {
				return err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return versions, nil
}

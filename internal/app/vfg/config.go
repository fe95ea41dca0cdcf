// Package vfg has the application logic for the version-from-git CLI
package vfg

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/heronman/version-from-git/pkg/gitver"
)

// ConfigFile is the name of the optional file, at the root of a repository, which configures how
// versions are derived for that repository.
const ConfigFile = ".version-from-git.yml"

// An Override changes the options loaded from defaults and configuration files, e.g. to apply a
// command-line flag.
type Override func(opts *gitver.Options)

// LoadOptions determines the options for deriving a version of the repo at the path. Options start
// from [gitver.DefaultOptions] and are then updated from the configuration file and by the
// overrides, in that order. If configPath is empty, the repo's [ConfigFile] is used if it exists;
// otherwise configPath must exist.
func LoadOptions(
	repoPath, configPath string, overrides ...Override,
) (opts gitver.Options, err error) {
	opts = gitver.DefaultOptions()
	required := configPath != ""
	if !required {
		configPath = filepath.Join(repoPath, ConfigFile)
	}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if opts, err = ParseOptions(data, opts); err != nil {
			return opts, errors.Wrapf(err, "couldn't load config file %s", configPath)
		}
	case required || !errors.Is(err, fs.ErrNotExist):
		return opts, errors.Wrapf(err, "couldn't read config file %s", configPath)
	}

	for _, override := range overrides {
		override(&opts)
	}
	if errs := opts.Check(); len(errs) > 0 {
		return opts, errors.Wrap(errs[0], "invalid options")
	}
	return opts, nil
}

// ParseOptions updates the base options with the fields set in a YAML configuration document.
// Unknown fields are rejected.
func ParseOptions(data []byte, base gitver.Options) (gitver.Options, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&base); err != nil && !errors.Is(err, io.EOF) {
		return base, errors.Wrap(err, "couldn't parse options")
	}
	return base, nil
}

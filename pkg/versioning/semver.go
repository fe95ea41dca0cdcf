package versioning

import (
	"github.com/blang/semver/v4"
	"github.com/pkg/errors"
	gosemver "golang.org/x/mod/semver"
)

// Semver interprets the version as a semantic version. Missing minor or patch components are
// filled in with zeroes, and the suffix (if any) becomes the pre-release identifiers.
func (v Version) Semver() (semver.Version, error) {
	if v.IsEmpty() {
		return semver.Version{}, errors.New("empty version has no semantic version")
	}
	parsed, err := semver.ParseTolerant(v.text)
	if err != nil {
		return semver.Version{}, errors.Wrapf(err, "couldn't parse %s as a semantic version", v.text)
	}
	return parsed, nil
}

// GoVersion returns the canonical Go module version corresponding to the version, or "" if the
// version can't be used as a Go module version.
func (v Version) GoVersion() string {
	text := v.text
	if !v.hasPrefix {
		text = string(prefix) + text
	}
	if !gosemver.IsValid(text) {
		return ""
	}
	return gosemver.Canonical(text)
}

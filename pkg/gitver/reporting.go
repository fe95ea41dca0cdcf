package gitver

// A Reporter receives human-readable progress messages from a derivation. Messages are
// informational only.
type Reporter interface {
	// Infof reports a notable step of the derivation.
	Infof(format string, a ...any)
	// Warnf reports a condition which made the derivation fall back to a default.
	Warnf(format string, a ...any)
	// Result reports the derived version.
	Result(version string)
}

// NopReporter discards all messages.
type NopReporter struct{}

func (NopReporter) Infof(string, ...any) {}

func (NopReporter) Warnf(string, ...any) {}

func (NopReporter) Result(string) {}

// Package cli provides utilities for nicer CLI output
package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	indentation = "  "
	bullet      = "- "
)

func makeIndentation(level int) string {
	return strings.Repeat(indentation, level)
}

// NewIndentedWriter returns a writer which indents every line written through it. ANSI escape
// sequences don't count towards the indentation.
func NewIndentedWriter(level int, forward io.Writer) io.Writer {
	return indent.NewWriterPipe(forward, uint(level*len(indentation)), nil) //nolint:gosec // level >= 0
}

func IndentedFprintf(level int, w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, "%s%s", makeIndentation(level), fmt.Sprintf(format, a...))
}

func IndentedFprintln(level int, w io.Writer, a ...any) {
	_, _ = fmt.Fprintf(w, "%s%s\n", makeIndentation(level), fmt.Sprint(a...))
}

func BulletedFprintf(level int, w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, "%s%s%s", makeIndentation(level), bullet, fmt.Sprintf(format, a...))
}

// IndentedFprintYaml serializes the value as a YAML document, indenting each line.
func IndentedFprintYaml(level int, w io.Writer, a any) error {
	buf := &bytes.Buffer{}
	encoder := yaml.NewEncoder(buf)
	encoder.SetIndent(len(indentation))
	if err := encoder.Encode(a); err != nil {
		return errors.Wrapf(err, "couldn't serialize %T as yaml document", a)
	}
	if err := encoder.Close(); err != nil {
		return errors.Wrapf(err, "couldn't close yaml encoder after serializing %T", a)
	}
	_, err := io.Copy(NewIndentedWriter(level, w), buf)
	return err
}

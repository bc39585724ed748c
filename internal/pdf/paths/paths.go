// Package paths resolves the command-line source and destination of a conversion
// and provides the file-extension helpers the resolution is built on.
package paths

import (
	"errors"
	"strings"
)

const (
	// DefaultSourceExt is appended to a source path without an extension
	DefaultSourceExt = ".pdf"
	// DefaultDestinationExt is appended to a destination path without an extension
	DefaultDestinationExt = ".xfa"
)

// ErrUsage is returned when the positional argument count is not 1 or 2
var ErrUsage = errors.New("expected <pdf> [<xfa>]")

// Pair is a resolved conversion source and destination
type Pair struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Resolve turns one or two positional arguments into a source and destination.
//
// With one argument the destination is the source without its extension. The
// source defaults to DefaultSourceExt and the destination to DefaultDestinationExt.
func Resolve(args []string) (Pair, error) {
	if len(args) < 1 || len(args) > 2 {
		return Pair{}, ErrUsage
	}

	source := WithDefaultExt(args[0], DefaultSourceExt)

	var destination string
	if len(args) == 1 {
		destination = TrimExt(source)
	} else {
		destination = args[1]
	}

	return Pair{
		Source:      source,
		Destination: WithDefaultExt(destination, DefaultDestinationExt),
	}, nil
}

// extIndex returns the index of the extension separator in the final path
// element of p, or -1 when there is none.
func extIndex(p string) int {
	base := strings.LastIndexAny(p, `/\`) + 1
	i := strings.LastIndexByte(p[base:], '.')
	if i < 0 {
		return -1
	}
	return base + i
}

// Ext returns the extension of the final path element including the dot.
// A trailing dot is an extension of its own: Ext("form.") == ".".
func Ext(p string) string {
	i := extIndex(p)
	if i < 0 {
		return ""
	}
	return p[i:]
}

// HasExt reports whether the final path element contains a dot
func HasExt(p string) bool {
	return extIndex(p) >= 0
}

// TrimExt removes the extension from the final path element
func TrimExt(p string) string {
	i := extIndex(p)
	if i < 0 {
		return p
	}
	return p[:i]
}

// WithDefaultExt appends ext to p unless p already has an extension
func WithDefaultExt(p, ext string) string {
	if HasExt(p) {
		return p
	}
	return p + ext
}

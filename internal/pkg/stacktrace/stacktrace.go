// Package stacktrace shortens runtime stack dumps for logs.
package stacktrace

import "strings"

// InternalPaths keeps the file:line frames of a debug.Stack dump that belong
// to this module's internal packages, trimmed to start at "internal/".
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.SplitSeq(string(stack), "\n") {
		frame, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		if !strings.Contains(frame, ".go:") {
			continue
		}

		i := strings.Index(frame, "/internal/")
		if i < 0 {
			continue
		}
		paths = append(paths, frame[i+1:])
	}
	return paths
}

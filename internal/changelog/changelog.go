// Package changelog parses the release notes embedded in the binary.
package changelog

import (
	_ "embed"
	"regexp"
	"strconv"
	"strings"
)

//go:embed CHANGELOG.md
var Content string

// Entry is one released version
type Entry struct {
	Version string
	Date    string
	Changes []string
}

// versionRegex matches headers like "## v0.2.0 (2026-09-21)" or "## 0.2.0"
var versionRegex = regexp.MustCompile(`^##\s+v?(\d+\.\d+\.\d+)(?:\s+\(([^)]+)\))?`)

// Parse extracts entries from markdown release notes, newest first as written
func Parse(content string) []Entry {
	var entries []Entry
	var current *Entry

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if m := versionRegex.FindStringSubmatch(line); m != nil {
			if current != nil {
				entries = append(entries, *current)
			}
			current = &Entry{Version: m[1], Date: m[2], Changes: []string{}}
			continue
		}
		if current != nil && strings.HasPrefix(line, "- ") {
			current.Changes = append(current.Changes, strings.TrimPrefix(line, "- "))
		}
	}
	if current != nil {
		entries = append(entries, *current)
	}
	return entries
}

// Since returns the entries newer than version. An empty version returns
// everything.
func Since(version string, entries []Entry) []Entry {
	if version == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if CompareVersions(e.Version, version) > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Format renders entries as plain text
func Format(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("v" + e.Version)
		if e.Date != "" {
			b.WriteString(" (" + e.Date + ")")
		}
		b.WriteString("\n")
		for _, c := range e.Changes {
			b.WriteString("  - " + c + "\n")
		}
	}
	return b.String()
}

// CompareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func CompareVersions(a, b string) int {
	ap, bp := parseVersion(a), parseVersion(b)
	for i := 0; i < 3; i++ {
		switch {
		case ap[i] < bp[i]:
			return -1
		case ap[i] > bp[i]:
			return 1
		}
	}
	return 0
}

// parseVersion extracts [major, minor, patch]; missing or non-numeric parts are 0
func parseVersion(v string) [3]int {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	var out [3]int
	for i := 0; i < 3 && i < len(parts); i++ {
		out[i], _ = strconv.Atoi(parts[i])
	}
	return out
}

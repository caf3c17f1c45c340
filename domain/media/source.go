package media

import "strings"

// SourceKind tells whether an input reference points to a remote URL or a local file
type SourceKind int

const (
	// Local is a filesystem path
	Local SourceKind = iota
	// Remote is an http:// or https:// URL
	Remote
)

// String returns a human readable name for the kind
func (k SourceKind) String() string {
	switch k {
	case Remote:
		return "remote"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// ClassifySource decides whether reference is Remote or Local.
// The prefix match is case-sensitive and touches neither network nor filesystem.
func ClassifySource(reference string) SourceKind {
	if strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://") {
		return Remote
	}
	return Local
}

// Package manifest binds dialogue blocks to pre-generated voice clips
// produced by the (external) voice synthesis collaborator.
//
// Binding is deliberately text-independent: two blocks with identical text
// but distinct audio keys must bind to their own, distinct manifest entries.
// See internal/dialogue for the block-level binding rule this package
// serves.
package manifest

import "strings"

// Entry is a single pre-generated voice clip.
type Entry struct {
	AudioKey          string  `json:"audioKey"`
	SpeakerID         int     `json:"speakerId"`
	Text              string  `json:"text"`
	AudioSrc          string  `json:"audioSrc"`
	DurationInSeconds float64 `json:"durationInSeconds"`
	FileName          string  `json:"fileName,omitempty"`
}

// Manifest is the ordered, fully-realized set of voice clips for a compile.
type Manifest []Entry

// Index provides O(1) lookup into a Manifest by audio key, built once and
// reused across every dialogue block in a compile.
type Index struct {
	byKey map[string]Entry
}

// NewIndex builds a lookup index over m. When multiple entries share an
// audioKey, the first one encountered wins, matching the manifest's
// documented ordering guarantee.
func NewIndex(m Manifest) *Index {
	idx := &Index{byKey: make(map[string]Entry, len(m))}
	for _, e := range m {
		if _, exists := idx.byKey[e.AudioKey]; !exists {
			idx.byKey[e.AudioKey] = e
		}
	}
	return idx
}

// ByAudioKey returns the entry bound to the given audio key, if any.
func (idx *Index) ByAudioKey(key string) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	e, ok := idx.byKey[key]
	return e, ok
}

// ByFileNameMatch returns the first manifest entry whose audioSrc equals or
// contains fileName. This is a linear scan over the original manifest order
// so results are deterministic regardless of Index's internal map order.
func ByFileNameMatch(m Manifest, fileName string) (Entry, bool) {
	if fileName == "" {
		return Entry{}, false
	}
	for _, e := range m {
		if e.AudioSrc == fileName || strings.Contains(e.AudioSrc, fileName) {
			return e, true
		}
	}
	return Entry{}, false
}

package timeline

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a Track as {"type": ..., "clips": [...]}, selecting the
// concrete clip slice by Type.
func (t Track) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type  TrackType `json:"type"`
		Clips any       `json:"clips"`
	}
	var clips any
	switch t.Type {
	case TrackTypeAudio:
		clips = nonNilSlice(t.AudioClips)
	case TrackTypeSubtitle:
		clips = nonNilSlice(t.SubtitleClips)
	case TrackTypeCharacter:
		clips = nonNilSlice(t.CharacterClips)
	case TrackTypeBgm:
		clips = nonNilSlice(t.BgmClips)
	default:
		return nil, fmt.Errorf("timeline: unknown track type %q", t.Type)
	}
	return json.Marshal(wire{Type: t.Type, Clips: clips})
}

// UnmarshalJSON decodes a Track, dispatching its clips array by Type.
func (t *Track) UnmarshalJSON(data []byte) error {
	var head struct {
		Type  TrackType       `json:"type"`
		Clips json.RawMessage `json:"clips"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	t.Type = head.Type
	switch head.Type {
	case TrackTypeAudio:
		return json.Unmarshal(head.Clips, &t.AudioClips)
	case TrackTypeSubtitle:
		return json.Unmarshal(head.Clips, &t.SubtitleClips)
	case TrackTypeCharacter:
		return json.Unmarshal(head.Clips, &t.CharacterClips)
	case TrackTypeBgm:
		return json.Unmarshal(head.Clips, &t.BgmClips)
	default:
		return fmt.Errorf("timeline: unknown track type %q", head.Type)
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

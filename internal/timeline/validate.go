package timeline

import "fmt"

// ValidationResult mirrors script.ValidationResult; kept as a distinct type
// so egress (Timeline) and ingress (Script) validation stay independently
// testable, per the compiler's driver/validator split.
type ValidationResult struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func errorf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: "error", Message: fmt.Sprintf(format, args...)}
}

// HasErrors reports whether any finding is at "error" level.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

// Validate runs all structural (egress) validations against a compiled
// Timeline. A failure here indicates a compiler bug (InvalidTimelineEmission)
// rather than bad input, since the Script was already validated at ingress.
func (t Timeline) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, t.validateVersion()...)
	results = append(results, t.validateMeta()...)
	results = append(results, t.validateAssetRefs()...)
	results = append(results, t.validateTrackOrdering()...)
	return results
}

func (t Timeline) validateVersion() []ValidationResult {
	if t.Version != Version {
		return []ValidationResult{errorf("version must be %q, got %q", Version, t.Version)}
	}
	return nil
}

func (t Timeline) validateMeta() []ValidationResult {
	var results []ValidationResult
	if t.Meta.FPS <= 0 {
		results = append(results, errorf("meta.fps must be > 0, got %d", t.Meta.FPS))
	}
	if t.Meta.TotalFrames < 0 {
		results = append(results, errorf("meta.totalFrames must be >= 0, got %d", t.Meta.TotalFrames))
	}
	return results
}

func (t Timeline) validateAssetRefs() []ValidationResult {
	var results []ValidationResult
	for _, track := range t.Tracks {
		switch track.Type {
		case TrackTypeAudio:
			for i, c := range track.AudioClips {
				if _, ok := t.Assets.Audio[c.AssetID]; !ok {
					results = append(results, errorf("audio track clip[%d]: unknown assetId %q", i, c.AssetID))
				}
				if c.Start < 0 {
					results = append(results, errorf("audio track clip[%d]: start must be >= 0", i))
				}
				if c.Duration < 0 {
					results = append(results, errorf("audio track clip[%d]: duration must be >= 0", i))
				}
			}
		case TrackTypeSubtitle:
			for i, c := range track.SubtitleClips {
				if c.Duration <= 0 {
					results = append(results, errorf("subtitle track clip[%d]: duration must be > 0", i))
				}
			}
		case TrackTypeCharacter:
			for i, c := range track.CharacterClips {
				if c.Duration <= 0 {
					results = append(results, errorf("character track clip[%d]: duration must be > 0", i))
				}
			}
		case TrackTypeBgm:
			for i, c := range track.BgmClips {
				if _, ok := t.Assets.Bgm[c.AssetID]; !ok {
					results = append(results, errorf("bgm track clip[%d]: unknown assetId %q", i, c.AssetID))
				}
				if c.Duration <= 0 {
					results = append(results, errorf("bgm track clip[%d]: duration must be > 0", i))
				}
			}
		}
	}
	return results
}

// validateTrackOrdering checks that clips on the audio/subtitle/character
// tracks are non-overlapping in ascending start order (invariant I3); gaps
// between clips are not flagged. The bgm track is allowed to overlap by design
// (transition windows), so it is excluded here.
func (t Timeline) validateTrackOrdering() []ValidationResult {
	var results []ValidationResult
	for _, track := range t.Tracks {
		var starts []int
		var ends []int
		switch track.Type {
		case TrackTypeAudio:
			for _, c := range track.AudioClips {
				starts = append(starts, c.Start)
				ends = append(ends, c.Start+c.Duration)
			}
		case TrackTypeSubtitle:
			for _, c := range track.SubtitleClips {
				starts = append(starts, c.Start)
				ends = append(ends, c.Start+c.Duration)
			}
		case TrackTypeCharacter:
			for _, c := range track.CharacterClips {
				starts = append(starts, c.Start)
				ends = append(ends, c.Start+c.Duration)
			}
		default:
			continue
		}
		for i := 1; i < len(starts); i++ {
			if starts[i] < ends[i-1] {
				results = append(results, errorf("%s track: clip[%d] starts at %d before clip[%d] ends at %d", track.Type, i, starts[i], i-1, ends[i-1]))
			}
		}
	}
	return results
}

package timeline

import "testing"

func countErrors(results []ValidationResult) int {
	n := 0
	for _, r := range results {
		if r.Level == "error" {
			n++
		}
	}
	return n
}

func validTimeline() Timeline {
	return Timeline{
		Version: Version,
		Meta:    Meta{FPS: 30, Width: 1920, Height: 1080, TotalFrames: 60},
		Assets: Assets{
			Audio: map[string]AudioAsset{"audio_001": {Src: "a.wav", DurationFrames: 30}},
			Bgm:   map[string]BgmAsset{"bgm_1": {Src: "bed.mp3"}},
		},
		Tracks: []Track{
			{Type: TrackTypeAudio, AudioClips: []AudioClip{{AssetID: "audio_001", Start: 0, Duration: 30}}},
			{Type: TrackTypeSubtitle, SubtitleClips: []SubtitleClip{{Start: 0, Duration: 30, Text: "hi"}}},
			{Type: TrackTypeCharacter, CharacterClips: []CharacterClip{{Start: 0, Duration: 30, CharacterID: "a"}}},
			{Type: TrackTypeBgm, BgmClips: []BgmClip{{AssetID: "bgm_1", Start: 0, Duration: 60}}},
		},
	}
}

func TestValidateValidTimelineHasNoErrors(t *testing.T) {
	results := validTimeline().Validate()
	if countErrors(results) != 0 {
		t.Fatalf("expected no errors, got %v", results)
	}
}

func TestValidateVersionRejectsBadVersion(t *testing.T) {
	tl := validTimeline()
	tl.Version = "9.9"

	results := tl.validateVersion()
	if countErrors(results) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", countErrors(results), results)
	}
}

func TestValidateMetaRejectsNonPositiveFPS(t *testing.T) {
	tl := validTimeline()
	tl.Meta.FPS = 0

	results := tl.validateMeta()
	if countErrors(results) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", countErrors(results), results)
	}
}

func TestValidateMetaRejectsNegativeTotalFrames(t *testing.T) {
	tl := validTimeline()
	tl.Meta.TotalFrames = -1

	results := tl.validateMeta()
	if countErrors(results) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", countErrors(results), results)
	}
}

func TestValidateAssetRefsRejectsDanglingAudioAssetID(t *testing.T) {
	tl := validTimeline()
	tl.Tracks[0] = Track{Type: TrackTypeAudio, AudioClips: []AudioClip{{AssetID: "missing", Start: 0, Duration: 30}}}

	results := tl.validateAssetRefs()
	if countErrors(results) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", countErrors(results), results)
	}
}

func TestValidateAssetRefsRejectsDanglingBgmAssetID(t *testing.T) {
	tl := validTimeline()
	tl.Tracks[3] = Track{Type: TrackTypeBgm, BgmClips: []BgmClip{{AssetID: "missing", Start: 0, Duration: 60}}}

	results := tl.validateAssetRefs()
	if countErrors(results) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", countErrors(results), results)
	}
}

func TestValidateAssetRefsRejectsNegativeStartAndDuration(t *testing.T) {
	tl := validTimeline()
	tl.Tracks[0] = Track{Type: TrackTypeAudio, AudioClips: []AudioClip{{AssetID: "audio_001", Start: -1, Duration: -1}}}

	results := tl.validateAssetRefs()
	if countErrors(results) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", countErrors(results), results)
	}
}

func TestValidateTrackOrderingRejectsOverlappingAudioClips(t *testing.T) {
	tl := validTimeline()
	tl.Tracks[0] = Track{Type: TrackTypeAudio, AudioClips: []AudioClip{
		{AssetID: "audio_001", Start: 0, Duration: 30},
		{AssetID: "audio_001", Start: 20, Duration: 10},
	}}

	results := tl.validateTrackOrdering()
	if countErrors(results) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", countErrors(results), results)
	}
}

func TestValidateTrackOrderingRejectsOutOfOrderCharacterClips(t *testing.T) {
	tl := validTimeline()
	tl.Tracks[2] = Track{Type: TrackTypeCharacter, CharacterClips: []CharacterClip{
		{Start: 30, Duration: 30, CharacterID: "a"},
		{Start: 0, Duration: 30, CharacterID: "a"},
	}}

	results := tl.validateTrackOrdering()
	if countErrors(results) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", countErrors(results), results)
	}
}

func TestValidateTrackOrderingAllowsOverlappingBgmClips(t *testing.T) {
	tl := validTimeline()
	tl.Tracks[3] = Track{Type: TrackTypeBgm, BgmClips: []BgmClip{
		{AssetID: "bgm_1", Start: 0, Duration: 40},
		{AssetID: "bgm_1", Start: 30, Duration: 30},
	}}

	results := tl.validateTrackOrdering()
	if countErrors(results) != 0 {
		t.Fatalf("bgm track overlap should not be flagged, got %v", results)
	}
}

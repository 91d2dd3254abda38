// Package timeline defines the Timeline document — the frame-precise editing
// plan the compiler emits — and its egress structural validation.
package timeline

// Version is the only literal value accepted in a Timeline's version field.
const Version = "0.1"

// Timeline is the root output document.
type Timeline struct {
	Version string `json:"version"`
	Meta    Meta   `json:"meta"`
	Assets  Assets `json:"assets"`
	Tracks  []Track `json:"tracks"`
}

// Meta carries video sizing/framerate and the compiled total frame count.
type Meta struct {
	FPS         int `json:"fps"`
	Width       int `json:"width"`
	Height      int `json:"height"`
	TotalFrames int `json:"totalFrames"`
}

// Assets groups the audio and (optional) BGM asset tables, keyed by asset id.
type Assets struct {
	Audio map[string]AudioAsset `json:"audio"`
	Bgm   map[string]BgmAsset   `json:"bgm,omitempty"`
}

// AudioAsset is a single voice-clip file reference.
type AudioAsset struct {
	Src             string `json:"src"`
	DurationFrames  int    `json:"durationFrames"`
}

// BgmAsset is a single background-music file reference.
type BgmAsset struct {
	Src             string   `json:"src"`
	DurationFrames  *int     `json:"durationFrames,omitempty"`
	LoudnessGainDb  *float64 `json:"loudnessGainDb,omitempty"`
}

// TrackType tags the Track union.
type TrackType string

const (
	TrackTypeAudio     TrackType = "audio"
	TrackTypeSubtitle  TrackType = "subtitle"
	TrackTypeCharacter TrackType = "character"
	TrackTypeBgm       TrackType = "bgm"
)

// Track is one ordered lane of clips. Exactly one of the *Clips slices is
// populated, selected by Type.
type Track struct {
	Type           TrackType        `json:"type"`
	AudioClips     []AudioClip     `json:"clips,omitempty"`
	SubtitleClips  []SubtitleClip  `json:"-"`
	CharacterClips []CharacterClip `json:"-"`
	BgmClips       []BgmClip       `json:"-"`
}

// AudioClip plays a bound voice-clip asset for the block's speech duration.
type AudioClip struct {
	AssetID  string `json:"assetId"`
	Start    int    `json:"start"`
	Duration int    `json:"duration"`
}

// SubtitleClip displays a dialogue block's text for its full duration
// (voice plus trailing pause).
type SubtitleClip struct {
	Start    int    `json:"start"`
	Duration int    `json:"duration"`
	Text     string `json:"text"`
}

// CharacterState carries the on-screen speaking state for a character clip.
type CharacterState struct {
	IsTalking bool `json:"isTalking"`
}

// CharacterClip places a character on screen, talking or idle.
type CharacterClip struct {
	Start       int            `json:"start"`
	Duration    int            `json:"duration"`
	CharacterID string         `json:"characterId"`
	State       CharacterState `json:"state"`
}

// DuckingParams mirrors script.DuckingConfig with all values resolved to
// frame counts and concrete gain fields, ready for the volume envelope.
type DuckingParams struct {
	Enabled       bool     `json:"enabled"`
	DuckDeltaDb   *float64 `json:"duckDeltaDb,omitempty"`
	DuckVolumeDb  *float64 `json:"duckVolumeDb,omitempty"`
	DuckVolume    *float64 `json:"duckVolume,omitempty"`
	AttackFrames  int      `json:"attackFrames"`
	ReleaseFrames int      `json:"releaseFrames"`
	MergeGapFrames int     `json:"mergeGapFrames,omitempty"`
	MinHoldFrames  int     `json:"minHoldFrames,omitempty"`
}

// BgmClip is one span of background music.
type BgmClip struct {
	AssetID              string         `json:"assetId"`
	Start                int            `json:"start"`
	Duration             int            `json:"duration"`
	AudioOffsetFrames    int            `json:"audioOffsetFrames,omitempty"`
	VolumeDb             *float64       `json:"volumeDb,omitempty"`
	Volume               *float64       `json:"volume,omitempty"`
	MaxGainDb            *float64       `json:"maxGainDb,omitempty"`
	FadeInFrames         int            `json:"fadeInFrames"`
	FadeOutFrames        int            `json:"fadeOutFrames"`
	Loop                 bool           `json:"loop"`
	LoopStartFrames      *int           `json:"loopStartFrames,omitempty"`
	LoopEndFrames        *int           `json:"loopEndFrames,omitempty"`
	LoopCrossfadeFrames  *int           `json:"loopCrossfadeFrames,omitempty"`
	IdleBoostDb          *float64       `json:"idleBoostDb,omitempty"`
	Ducking              *DuckingParams `json:"ducking,omitempty"`
	TransitionInFrames   int            `json:"transitionInFrames,omitempty"`
	TransitionOutFrames  int            `json:"transitionOutFrames,omitempty"`
}

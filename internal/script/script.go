// Package script defines the Script document — the human-authored intent
// description of a narrated video — and its structural validation rules.
//
// A Script is decoded from JSON, validated once at ingress, and never
// mutated afterward; the timeline compiler treats it as read-only input.
package script

import (
	"encoding/json"
	"fmt"
)

// Version is the only literal value accepted in a Script's version field.
const Version = "0.1"

// Script is the root document describing a narrated video.
type Script struct {
	Version string              `json:"version"`
	Video   VideoConfig         `json:"video"`
	Cast    map[string]CastEntry `json:"cast"`
	Scenes  []Scene             `json:"scenes"`
}

// VideoConfig carries video sizing, framerate, and the video-level BGM and
// audio-profile settings.
type VideoConfig struct {
	FPS             int          `json:"fps"`
	Width           int          `json:"width"`
	Height          int          `json:"height"`
	DefaultPauseSec float64      `json:"defaultPauseSec"`
	Bgm             *BgmConfig   `json:"bgm,omitempty"`
	AudioProfile    *AudioProfile `json:"audioProfile,omitempty"`
}

// AudioProfile carries loudness targets consumed by the (external) media
// probe collaborator; the core only threads it through unchanged.
type AudioProfile struct {
	BgmTargetLufs float64 `json:"bgmTargetLufs"`
	BgmTargetLra  float64 `json:"bgmTargetLra"`
	TruePeakDb    float64 `json:"truePeakDb"`
}

// CastEntry describes one speaker's voice engine binding and asset location.
type CastEntry struct {
	Voice  VoiceConfig `json:"voice"`
	Assets *CastAssets `json:"assets,omitempty"`
}

// VoiceConfig identifies the voice synthesis engine and speaker.
type VoiceConfig struct {
	Engine    string `json:"engine"`
	SpeakerID int    `json:"speakerId"`
}

// CastAssets carries speaker-specific asset locations.
type CastAssets struct {
	BaseDir string `json:"baseDir,omitempty"`
}

// Preset names the four built-in BGM presets.
type Preset string

const (
	PresetTalk Preset = "talk"
	PresetCalm Preset = "calm"
	PresetHype Preset = "hype"
	PresetNone Preset = "none"
)

// BgmConfig describes a background-music track's baseline settings. Every
// field is optional so the same shape can serve as global defaults, a named
// preset, or a video-level override; the resolver in internal/bgmconfig
// merges these in ascending precedence.
type BgmConfig struct {
	Src              string          `json:"src,omitempty"`
	Preset           Preset          `json:"preset,omitempty"`
	VolumeDb         *float64        `json:"volumeDb,omitempty"`
	Volume           *float64        `json:"volume,omitempty"`
	MaxGainDb        *float64        `json:"maxGainDb,omitempty"`
	FadeInSec        *float64        `json:"fadeInSec,omitempty"`
	FadeOutSec       *float64        `json:"fadeOutSec,omitempty"`
	Loop             *bool           `json:"loop,omitempty"`
	LoopStartSec     *float64        `json:"loopStartSec,omitempty"`
	LoopEndSec       *float64        `json:"loopEndSec,omitempty"`
	LoopCrossfadeSec *float64        `json:"loopCrossfadeSec,omitempty"`
	IdleBoostDb      *float64        `json:"idleBoostDb,omitempty"`
	Ducking          *DuckingConfig  `json:"ducking,omitempty"`
}

// DuckingConfig controls automatic BGM attenuation while a speaker talks.
type DuckingConfig struct {
	Enabled      *bool    `json:"enabled,omitempty"`
	DuckDeltaDb  *float64 `json:"duckDeltaDb,omitempty"`
	DuckVolumeDb *float64 `json:"duckVolumeDb,omitempty"`
	DuckVolume   *float64 `json:"duckVolume,omitempty"`
	AttackSec    *float64 `json:"attackSec,omitempty"`
	ReleaseSec   *float64 `json:"releaseSec,omitempty"`
	MergeGapSec  *float64 `json:"mergeGapSec,omitempty"`
	MinHoldSec   *float64 `json:"minHoldSec,omitempty"`
}

// SceneBgmOverride is a BgmConfig plus the crossfade duration used when the
// scene's resolved src differs from the preceding scene's.
type SceneBgmOverride struct {
	BgmConfig
	TransitionSec *float64 `json:"transitionSec,omitempty"`
}

// SceneStyle carries per-scene presentation and BGM override settings.
type SceneStyle struct {
	Bg            string           `json:"bg,omitempty"`
	SubtitleStyle json.RawMessage  `json:"subtitleStyle,omitempty"`
	Bgm           *SceneBgmOverride `json:"bgm,omitempty"`
}

// Scene is an ordered subdivision of a Script; insertion order determines
// on-screen order.
type Scene struct {
	ID     string      `json:"id"`
	Style  *SceneStyle `json:"style,omitempty"`
	Blocks []Block     `json:"blocks"`
}

// BlockType tags the Block union. Dialogue is the only variant currently
// defined; adding a variant without updating every switch on BlockType is a
// build-time smell. Scene.UnmarshalJSON rejects unknown types at decode
// time, and internal/compile's tests assert on UnknownBlockType for blocks
// built in code.
type BlockType string

const BlockTypeDialogue BlockType = "dialogue"

// Block is a tagged union over the kinds of content a Scene can contain.
type Block interface {
	BlockType() BlockType
}

// DialogueBlock is a single line of narrated dialogue bound to a
// pre-generated voice clip via its audio key.
type DialogueBlock struct {
	Type     BlockType `json:"type"`
	Speaker  string    `json:"speaker"`
	Text     string    `json:"text"`
	PauseSec *float64  `json:"pauseSec,omitempty"`
	ID       string    `json:"id,omitempty"`
	AudioKey string    `json:"audioKey,omitempty"`
	FileName string    `json:"fileName,omitempty"`
}

// BlockType implements Block.
func (d DialogueBlock) BlockType() BlockType { return BlockTypeDialogue }

// UnmarshalJSON decodes a scene's blocks array, dispatching each element on
// its "type" field. An unrecognized type is a decode-time error rather than
// a silently dropped block — the JSON-level analogue of the fatal
// UnknownBlockType the compiler raises for the same situation at compile
// time (see internal/compile).
func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string            `json:"id"`
		Style  *SceneStyle       `json:"style,omitempty"`
		Blocks []json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.ID = raw.ID
	s.Style = raw.Style
	s.Blocks = make([]Block, 0, len(raw.Blocks))
	for i, rb := range raw.Blocks {
		var head struct {
			Type BlockType `json:"type"`
		}
		if err := json.Unmarshal(rb, &head); err != nil {
			return fmt.Errorf("scene %q block[%d]: %w", raw.ID, i, err)
		}
		switch head.Type {
		case BlockTypeDialogue:
			var db DialogueBlock
			if err := json.Unmarshal(rb, &db); err != nil {
				return fmt.Errorf("scene %q block[%d]: %w", raw.ID, i, err)
			}
			s.Blocks = append(s.Blocks, db)
		default:
			return fmt.Errorf("scene %q block[%d]: unknown block type %q", raw.ID, i, head.Type)
		}
	}
	return nil
}

// MarshalJSON re-encodes a Scene, flattening its polymorphic Blocks back
// into a plain array.
func (s Scene) MarshalJSON() ([]byte, error) {
	type alias struct {
		ID     string      `json:"id"`
		Style  *SceneStyle `json:"style,omitempty"`
		Blocks []Block     `json:"blocks"`
	}
	return json.Marshal(alias{ID: s.ID, Style: s.Style, Blocks: s.Blocks})
}

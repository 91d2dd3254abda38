// Package bgmconfig resolves a scene's effective background-music settings
// by deep-merging, in ascending precedence, global defaults, a named preset,
// the video-level BGM block, and the scene's own override.
package bgmconfig

import (
	"encoding/json"
	"fmt"

	"timelinec/internal/script"
)

// Default constants shared by the resolver and the volume envelope.
const (
	DefaultBaseDb           = -12.0
	DefaultMaxGainDb        = -3.0
	DefaultIdleBoostDb      = 3.0
	DefaultDuckDeltaDb      = -8.0
	DefaultAttackSec        = 0.10
	DefaultReleaseSec       = 0.25
	DefaultMergeGapSec      = 0.35
	DefaultMinHoldSec       = 0.60
	DefaultLoopCrossfadeSec = 0.25
	DefaultFadeInSec        = 1.0
	DefaultFadeOutSec       = 1.0
	DefaultTransitionSec    = 1.0
)

// ResolvedConfig is a scene's fully-merged BGM configuration. Every field
// that has a spec-defined default is concrete after Resolve; fields with no
// default (Src's loop window, Volume vs VolumeDb selection) remain optional.
type ResolvedConfig struct {
	Src              string          `json:"src"`
	VolumeDb         *float64        `json:"volumeDb,omitempty"`
	Volume           *float64        `json:"volume,omitempty"`
	MaxGainDb        float64         `json:"maxGainDb"`
	FadeInSec        float64         `json:"fadeInSec"`
	FadeOutSec       float64         `json:"fadeOutSec"`
	Loop             bool            `json:"loop"`
	LoopStartSec     *float64        `json:"loopStartSec,omitempty"`
	LoopEndSec       *float64        `json:"loopEndSec,omitempty"`
	LoopCrossfadeSec float64         `json:"loopCrossfadeSec"`
	IdleBoostDb      float64         `json:"idleBoostDb"`
	Ducking          DuckingResolved `json:"ducking"`
}

// DuckingResolved is the merged ducking configuration.
type DuckingResolved struct {
	Enabled      bool     `json:"enabled"`
	DuckDeltaDb  *float64 `json:"duckDeltaDb,omitempty"`
	DuckVolumeDb *float64 `json:"duckVolumeDb,omitempty"`
	DuckVolume   *float64 `json:"duckVolume,omitempty"`
	AttackSec    float64  `json:"attackSec"`
	ReleaseSec   float64  `json:"releaseSec"`
	MergeGapSec  float64  `json:"mergeGapSec"`
	MinHoldSec   float64  `json:"minHoldSec"`
}

func f(v float64) *float64 { return &v }
func b(v bool) *bool       { return &v }

// defaultsLayer is the base of the merge chain: every spec-defined DEFAULT_*
// constant, expressed as an already-concrete BgmConfig overlay.
func defaultsLayer() script.BgmConfig {
	return script.BgmConfig{
		VolumeDb:         f(DefaultBaseDb),
		MaxGainDb:        f(DefaultMaxGainDb),
		FadeInSec:        f(DefaultFadeInSec),
		FadeOutSec:       f(DefaultFadeOutSec),
		Loop:             b(false),
		LoopCrossfadeSec: f(DefaultLoopCrossfadeSec),
		IdleBoostDb:      f(DefaultIdleBoostDb),
		Ducking: &script.DuckingConfig{
			Enabled:     b(false),
			DuckDeltaDb: f(DefaultDuckDeltaDb),
			AttackSec:   f(DefaultAttackSec),
			ReleaseSec:  f(DefaultReleaseSec),
			MergeGapSec: f(DefaultMergeGapSec),
			MinHoldSec:  f(DefaultMinHoldSec),
		},
	}
}

// presetLayer returns the named preset's overlay. An empty or "none" preset
// contributes no changes beyond the defaults layer.
func presetLayer(p script.Preset) script.BgmConfig {
	switch p {
	case script.PresetTalk:
		return script.BgmConfig{
			Loop:    b(true),
			Ducking: &script.DuckingConfig{Enabled: b(true)},
		}
	case script.PresetCalm:
		return script.BgmConfig{
			Loop:      b(true),
			VolumeDb:  f(-16),
			Ducking: &script.DuckingConfig{
				Enabled:     b(true),
				DuckDeltaDb: f(-5),
				AttackSec:   f(0.25),
				ReleaseSec:  f(0.5),
			},
		}
	case script.PresetHype:
		return script.BgmConfig{
			Loop:        b(true),
			VolumeDb:    f(-8),
			MaxGainDb:   f(0),
			IdleBoostDb: f(0),
			Ducking:     &script.DuckingConfig{Enabled: b(false)},
		}
	case script.PresetNone, "":
		return script.BgmConfig{}
	default:
		return script.BgmConfig{}
	}
}

// Resolve merges the video-level BGM config and the scene's override (either
// of which may be nil) into a ResolvedConfig, honoring the precedence order
// defaults < preset < video < scene.
func Resolve(video *script.BgmConfig, scene *script.SceneBgmOverride) ResolvedConfig {
	merged := defaultsLayer()

	presetName := presetName(video, scene)
	merged = mergeBgmConfig(merged, presetLayer(presetName))

	if video != nil {
		merged = mergeBgmConfig(merged, *video)
	}
	if scene != nil {
		merged = mergeBgmConfig(merged, scene.BgmConfig)
	}

	merged.Src = resolveSrc(video, scene)
	return toResolved(merged)
}

// ResolveTransitionSec returns the scene override's transitionSec, or the
// spec default, used only when the previous scene's resolved src differs.
func ResolveTransitionSec(scene *script.SceneBgmOverride) float64 {
	if scene != nil && scene.TransitionSec != nil {
		return *scene.TransitionSec
	}
	return DefaultTransitionSec
}

func presetName(video *script.BgmConfig, scene *script.SceneBgmOverride) script.Preset {
	if scene != nil && scene.Preset != "" {
		return scene.Preset
	}
	if video != nil && video.Preset != "" {
		return video.Preset
	}
	return ""
}

func resolveSrc(video *script.BgmConfig, scene *script.SceneBgmOverride) string {
	if scene != nil && scene.Src != "" {
		return scene.Src
	}
	if video != nil {
		return video.Src
	}
	return ""
}

// mergeBgmConfig applies overlay on top of base, field by field, preserving
// the volumeDb/volume mutual exclusivity and deep-merging the nested Ducking
// object rather than replacing it wholesale.
func mergeBgmConfig(base, overlay script.BgmConfig) script.BgmConfig {
	out := base

	if overlay.VolumeDb != nil {
		out.VolumeDb = overlay.VolumeDb
		out.Volume = nil
	}
	if overlay.Volume != nil {
		out.Volume = overlay.Volume
		out.VolumeDb = nil
	}
	if overlay.MaxGainDb != nil {
		out.MaxGainDb = overlay.MaxGainDb
	}
	if overlay.FadeInSec != nil {
		out.FadeInSec = overlay.FadeInSec
	}
	if overlay.FadeOutSec != nil {
		out.FadeOutSec = overlay.FadeOutSec
	}
	if overlay.Loop != nil {
		out.Loop = overlay.Loop
	}
	if overlay.LoopStartSec != nil {
		out.LoopStartSec = overlay.LoopStartSec
	}
	if overlay.LoopEndSec != nil {
		out.LoopEndSec = overlay.LoopEndSec
	}
	if overlay.LoopCrossfadeSec != nil {
		out.LoopCrossfadeSec = overlay.LoopCrossfadeSec
	}
	if overlay.IdleBoostDb != nil {
		out.IdleBoostDb = overlay.IdleBoostDb
	}
	if overlay.Ducking != nil {
		merged := mergeDucking(out.Ducking, *overlay.Ducking)
		out.Ducking = &merged
	}
	return out
}

func mergeDucking(base *script.DuckingConfig, overlay script.DuckingConfig) script.DuckingConfig {
	var out script.DuckingConfig
	if base != nil {
		out = *base
	}

	if overlay.Enabled != nil {
		out.Enabled = overlay.Enabled
	}
	if overlay.DuckDeltaDb != nil {
		out.DuckDeltaDb = overlay.DuckDeltaDb
		out.DuckVolumeDb = nil
		out.DuckVolume = nil
	}
	if overlay.DuckVolumeDb != nil {
		out.DuckVolumeDb = overlay.DuckVolumeDb
		out.DuckDeltaDb = nil
		out.DuckVolume = nil
	}
	if overlay.DuckVolume != nil {
		out.DuckVolume = overlay.DuckVolume
		out.DuckDeltaDb = nil
		out.DuckVolumeDb = nil
	}
	if overlay.AttackSec != nil {
		out.AttackSec = overlay.AttackSec
	}
	if overlay.ReleaseSec != nil {
		out.ReleaseSec = overlay.ReleaseSec
	}
	if overlay.MergeGapSec != nil {
		out.MergeGapSec = overlay.MergeGapSec
	}
	if overlay.MinHoldSec != nil {
		out.MinHoldSec = overlay.MinHoldSec
	}
	return out
}

func toResolved(merged script.BgmConfig) ResolvedConfig {
	rc := ResolvedConfig{
		Src:              merged.Src,
		VolumeDb:         merged.VolumeDb,
		Volume:           merged.Volume,
		LoopStartSec:     merged.LoopStartSec,
		LoopEndSec:       merged.LoopEndSec,
	}
	if merged.MaxGainDb != nil {
		rc.MaxGainDb = *merged.MaxGainDb
	}
	if merged.FadeInSec != nil {
		rc.FadeInSec = *merged.FadeInSec
	}
	if merged.FadeOutSec != nil {
		rc.FadeOutSec = *merged.FadeOutSec
	}
	if merged.Loop != nil {
		rc.Loop = *merged.Loop
	}
	if merged.LoopCrossfadeSec != nil {
		rc.LoopCrossfadeSec = *merged.LoopCrossfadeSec
	}
	if merged.IdleBoostDb != nil {
		rc.IdleBoostDb = *merged.IdleBoostDb
	}
	if merged.Ducking != nil {
		d := *merged.Ducking
		rc.Ducking = DuckingResolved{
			DuckDeltaDb:  d.DuckDeltaDb,
			DuckVolumeDb: d.DuckVolumeDb,
			DuckVolume:   d.DuckVolume,
		}
		if d.Enabled != nil {
			rc.Ducking.Enabled = *d.Enabled
		}
		if d.AttackSec != nil {
			rc.Ducking.AttackSec = *d.AttackSec
		}
		if d.ReleaseSec != nil {
			rc.Ducking.ReleaseSec = *d.ReleaseSec
		}
		if d.MergeGapSec != nil {
			rc.Ducking.MergeGapSec = *d.MergeGapSec
		}
		if d.MinHoldSec != nil {
			rc.Ducking.MinHoldSec = *d.MinHoldSec
		}
	}
	return rc
}

// CanonicalKey returns a stable serialization of a ResolvedConfig suitable
// for equality comparison across scenes (the planner's currentConfigKey).
func CanonicalKey(cfg ResolvedConfig) string {
	b, err := json.Marshal(cfg)
	if err != nil {
		// ResolvedConfig contains only JSON-safe scalar and pointer-to-scalar
		// fields; Marshal cannot fail for this type.
		panic(fmt.Sprintf("bgmconfig: canonical key marshal: %v", err))
	}
	return string(b)
}

// djb2 folds s into a 32-bit hash using the classic DJB2 multiply-and-add.
func djb2(s string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// HashSrc derives a deterministic asset id from a BGM source path.
func HashSrc(src string) string {
	return fmt.Sprintf("bgm_%08x", djb2(src))
}

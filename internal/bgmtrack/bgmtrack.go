// Package bgmtrack plans the background-music track: one scene-driven pass
// that resolves per-scene BGM configuration, merges adjacent scenes sharing
// an unchanged configuration into a single clip, and splits on configuration
// or source changes with continuous-playback offsets and crossfade
// transitions.
package bgmtrack

import (
	"fmt"

	"timelinec/internal/bgmconfig"
	"timelinec/internal/script"
	"timelinec/internal/timeline"
	"timelinec/internal/units"
)

// WarningKind enumerates the recoverable, data-driven problems the planner
// can hit without aborting the compile.
type WarningKind string

const (
	WarningMissingBgmDuration WarningKind = "MissingBgmDuration"
)

// Warning is a single recoverable finding surfaced back to the caller.
type Warning struct {
	Kind    WarningKind
	Message string
}

// SceneSpan is the frame window a compiled scene occupies, together with the
// scene's own BGM override (nil if the scene declares none).
type SceneSpan struct {
	SceneID  string
	Start    int
	End      int
	Override *script.SceneBgmOverride
}

// Result is the planned BGM track plus the asset table entries it referenced.
type Result struct {
	Clips    []timeline.BgmClip
	Assets   map[string]timeline.BgmAsset
	Warnings []Warning
}

// Plan builds the BGM track for a compile. video is the Script's video-level
// BGM config (the caller only invokes Plan when it is non-nil). durationFrames
// and loudnessGainDb are keyed by the asset id derived from a resolved src
// (bgmconfig.HashSrc); both may be nil or incomplete.
func Plan(video *script.BgmConfig, spans []SceneSpan, totalFrames, fps int, durationFrames map[string]int, loudnessGainDb map[string]float64) Result {
	p := &planner{
		video:              video,
		fps:                fps,
		durationFrames:     durationFrames,
		loudnessGainDb:     loudnessGainDb,
		assets:             make(map[string]timeline.BgmAsset),
		playbackPosByAsset: make(map[string]int),
		warnedMissing:      make(map[string]bool),
	}

	if len(spans) == 0 {
		p.planEmptyScript(totalFrames)
	} else {
		for i, span := range spans {
			p.step(span, i == len(spans)-1)
		}
		p.finalize()
	}

	// A clip whose asset has no known duration cannot loop; it plays once.
	for i := range p.clips {
		if p.assets[p.clips[i].AssetID].DurationFrames == nil {
			p.clips[i].Loop = false
		}
	}

	return Result{Clips: p.clips, Assets: p.assets, Warnings: p.warnings}
}

type planner struct {
	video          *script.BgmConfig
	fps            int
	durationFrames map[string]int
	loudnessGainDb map[string]float64

	assets             map[string]timeline.BgmAsset
	playbackPosByAsset map[string]int
	warnedMissing      map[string]bool

	clips   []timeline.BgmClip
	current *timeline.BgmClip
	currentConfigKey string
	currentAssetID   string
	lastResolved     bgmconfig.ResolvedConfig

	warnings []Warning
}

func (p *planner) planEmptyScript(totalFrames int) {
	cfg := bgmconfig.Resolve(p.video, nil)
	assetID := bgmconfig.HashSrc(cfg.Src)
	p.registerAsset(assetID, cfg)

	clip := buildClipBase(cfg, assetID, p.fps)
	clip.Start = 0
	clip.Duration = totalFrames
	clip.FadeInFrames = fadeFrames(cfg.FadeInSec, p.fps)
	clip.FadeOutFrames = fadeFrames(cfg.FadeOutSec, p.fps)
	p.clips = append(p.clips, clip)
}

func (p *planner) step(span SceneSpan, isLast bool) {
	cfg := bgmconfig.Resolve(p.video, span.Override)
	key := bgmconfig.CanonicalKey(cfg)
	assetID := bgmconfig.HashSrc(cfg.Src)
	p.registerAsset(assetID, cfg)
	p.lastResolved = cfg

	switch {
	case p.current == nil:
		clip := buildClipBase(cfg, assetID, p.fps)
		clip.Start = span.Start
		clip.Duration = span.End - span.Start
		clip.FadeInFrames = fadeFrames(cfg.FadeInSec, p.fps)
		p.current = &clip
		p.currentConfigKey = key
		p.currentAssetID = assetID

	case key == p.currentConfigKey:
		p.current.Duration = span.End - p.current.Start

	case assetID == p.currentAssetID:
		p.current.Duration = span.Start - p.current.Start
		p.playbackPosByAsset[assetID] += p.current.Duration
		p.clips = append(p.clips, *p.current)

		clip := buildClipBase(cfg, assetID, p.fps)
		clip.Start = span.Start
		clip.Duration = span.End - span.Start
		clip.AudioOffsetFrames = wrapPlaybackPosition(p.playbackPosByAsset[assetID], p.durationRef(assetID), cfg.Loop, clip.LoopStartFrames, clip.LoopEndFrames)
		p.current = &clip
		p.currentConfigKey = key
		p.currentAssetID = assetID

	default:
		transitionSec := bgmconfig.ResolveTransitionSec(span.Override)
		transitionFrames := units.MaxInt(1, units.SecondsToFrames(transitionSec, p.fps))

		p.current.Duration = span.Start + transitionFrames - p.current.Start
		p.current.TransitionOutFrames = transitionFrames
		p.playbackPosByAsset[p.currentAssetID] += p.current.Duration
		p.clips = append(p.clips, *p.current)

		clip := buildClipBase(cfg, assetID, p.fps)
		clip.Start = span.Start
		clip.Duration = span.End - span.Start
		clip.TransitionInFrames = transitionFrames
		p.current = &clip
		p.currentConfigKey = key
		p.currentAssetID = assetID
	}

	if isLast {
		p.current.FadeOutFrames = fadeFrames(cfg.FadeOutSec, p.fps)
	}
}

func (p *planner) finalize() {
	if p.current != nil {
		p.clips = append(p.clips, *p.current)
		p.current = nil
	}
}

func (p *planner) registerAsset(assetID string, cfg bgmconfig.ResolvedConfig) {
	if _, ok := p.assets[assetID]; ok {
		return
	}
	asset := timeline.BgmAsset{Src: cfg.Src}
	if d, ok := p.durationFrames[assetID]; ok {
		asset.DurationFrames = &d
	} else if cfg.Loop && !p.warnedMissing[assetID] {
		p.warnedMissing[assetID] = true
		p.warnings = append(p.warnings, Warning{
			Kind:    WarningMissingBgmDuration,
			Message: fmt.Sprintf("bgm asset %q: no duration entry, looping disabled", assetID),
		})
	}
	if g, ok := p.loudnessGainDb[assetID]; ok {
		asset.LoudnessGainDb = &g
	}
	p.assets[assetID] = asset
}

func (p *planner) durationRef(assetID string) *int {
	if a, ok := p.assets[assetID]; ok {
		return a.DurationFrames
	}
	return nil
}

// buildClipBase constructs the config-derived, position-independent fields
// of a BgmClip. Callers set Start, Duration, AudioOffsetFrames,
// FadeInFrames/FadeOutFrames (first/last clip only), and Transition*Frames.
func buildClipBase(cfg bgmconfig.ResolvedConfig, assetID string, fps int) timeline.BgmClip {
	clip := timeline.BgmClip{
		AssetID:       assetID,
		VolumeDb:      cfg.VolumeDb,
		Volume:        cfg.Volume,
		MaxGainDb:     floatPtr(cfg.MaxGainDb),
		FadeInFrames:  1,
		FadeOutFrames: 1,
		Loop:          cfg.Loop,
		IdleBoostDb:   floatPtr(cfg.IdleBoostDb),
	}

	if cfg.LoopStartSec != nil {
		v := units.SecondsToFrames(*cfg.LoopStartSec, fps)
		clip.LoopStartFrames = &v
	}
	if cfg.LoopEndSec != nil {
		v := units.SecondsToFrames(*cfg.LoopEndSec, fps)
		clip.LoopEndFrames = &v
	}
	lcf := units.SecondsToFrames(cfg.LoopCrossfadeSec, fps)
	clip.LoopCrossfadeFrames = &lcf

	clip.Ducking = &timeline.DuckingParams{
		Enabled:        cfg.Ducking.Enabled,
		DuckDeltaDb:    cfg.Ducking.DuckDeltaDb,
		DuckVolumeDb:   cfg.Ducking.DuckVolumeDb,
		DuckVolume:     cfg.Ducking.DuckVolume,
		AttackFrames:   units.SecondsToFrames(cfg.Ducking.AttackSec, fps),
		ReleaseFrames:  units.SecondsToFrames(cfg.Ducking.ReleaseSec, fps),
		MergeGapFrames: units.SecondsToFrames(cfg.Ducking.MergeGapSec, fps),
		MinHoldFrames:  units.SecondsToFrames(cfg.Ducking.MinHoldSec, fps),
	}
	return clip
}

func fadeFrames(sec float64, fps int) int {
	return units.MaxInt(1, units.SecondsToFrames(sec, fps))
}

func floatPtr(v float64) *float64 { return &v }

// wrapPlaybackPosition implements §4.2's wrapped-playback-position rule: an
// unknown duration passes the accumulated position through unchanged (the
// renderer handles it); disabled looping clamps to the asset length; an
// invalid or absent loop window falls back to modulo over the whole file.
func wrapPlaybackPosition(p int, durationFrames *int, loop bool, loopStartFrames, loopEndFrames *int) int {
	if durationFrames == nil {
		return p
	}
	d := *durationFrames
	if !loop {
		return units.MinInt(p, d)
	}
	if d <= 0 {
		return 0
	}

	lsPrime := 0
	if loopStartFrames != nil {
		lsPrime = *loopStartFrames
	}
	lePrime := d
	if loopEndFrames != nil {
		lePrime = *loopEndFrames
	}
	l := lePrime - lsPrime
	if l <= 0 || lsPrime < 0 || lePrime > d {
		return p % d
	}
	if p < lsPrime {
		return p
	}
	return lsPrime + (p-lsPrime)%l
}

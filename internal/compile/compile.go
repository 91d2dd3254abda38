// Package compile is the timeline compiler's driver: it walks a validated
// Script's scenes and blocks, advancing an integer frame cursor, dispatches
// each block to its rule, invokes the BGM planner once video-level BGM is
// configured, and assembles and validates the resulting Timeline.
//
// Compile is a pure function of its inputs — no clocks, no RNG, no shared
// mutable state survives a single call.
package compile

import (
	"fmt"

	"timelinec/internal/bgmtrack"
	"timelinec/internal/dialogue"
	"timelinec/internal/manifest"
	"timelinec/internal/script"
	"timelinec/internal/timeline"
)

// Kind enumerates the fatal error categories a compile can fail with.
// Data-driven problems with a safe fallback are never Kinds; they surface
// as Warnings instead (see §7 of the design notes this package implements).
type Kind string

const (
	KindInvalidScript           Kind = "InvalidScript"
	KindInvalidTimelineEmission Kind = "InvalidTimelineEmission"
	KindUnknownBlockType        Kind = "UnknownBlockType"
)

// Error is a fatal compile failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WarningKind mirrors the recoverable finding kinds surfaced by the
// sub-components this driver calls.
type WarningKind string

const (
	WarningUnboundAudio       WarningKind = "UnboundAudio"
	WarningUnknownSpeaker     WarningKind = "UnknownSpeaker"
	WarningMissingBgmDuration WarningKind = "MissingBgmDuration"
)

// Warning is a single recoverable, data-driven finding from the compile.
type Warning struct {
	Kind    WarningKind
	Message string
}

// Input bundles a Script with the out-of-band inputs the core needs but
// does not itself produce: the audio manifest and the optional BGM
// duration/loudness maps supplied by the media-probe collaborator.
type Input struct {
	Script            script.Script
	Manifest          manifest.Manifest
	BgmDurationFrames map[string]int
	BgmLoudnessGainDb map[string]float64
}

// Result is a successful compile's output.
type Result struct {
	Timeline timeline.Timeline
	Warnings []Warning
}

// Compile runs the deterministic single-pass compilation described in the
// timeline compiler's design: validate the Script, walk scenes and blocks
// emitting audio/subtitle/character clips and advancing the frame cursor,
// plan the BGM track over the recorded scene spans, assemble the Timeline,
// and self-validate before returning.
func Compile(in Input) (Result, error) {
	if results := in.Script.Validate(); script.HasErrors(results) {
		return Result{}, newError(KindInvalidScript, "%s", firstScriptError(results))
	}

	var warnings []Warning
	audioTrack := timeline.Track{Type: timeline.TrackTypeAudio}
	subtitleTrack := timeline.Track{Type: timeline.TrackTypeSubtitle}
	characterTrack := timeline.Track{Type: timeline.TrackTypeCharacter}
	audioAssets := make(map[string]timeline.AudioAsset)

	manifestIndex := manifest.NewIndex(in.Manifest)

	cursor := 0
	globalBlockIndex := 0
	var spans []bgmtrack.SceneSpan

	for _, scene := range in.Script.Scenes {
		sceneStart := cursor
		for blockIndex, block := range scene.Blocks {
			db, ok := block.(script.DialogueBlock)
			if !ok {
				return Result{}, newError(KindUnknownBlockType, "scene %q block[%d]: unhandled block type %q", scene.ID, blockIndex, block.BlockType())
			}

			ctx := dialogue.Context{
				Script:           in.Script,
				Scene:            scene,
				ManifestIndex:    manifestIndex,
				RawManifest:      in.Manifest,
				CurrentFrame:     cursor,
				BlockIndex:       blockIndex,
				GlobalBlockIndex: globalBlockIndex,
			}
			res := dialogue.Emit(ctx, db)

			audioAssets[res.AudioAssetID] = res.AudioAsset
			audioTrack.AudioClips = append(audioTrack.AudioClips, res.AudioClip)
			subtitleTrack.SubtitleClips = append(subtitleTrack.SubtitleClips, res.SubtitleClip)
			characterTrack.CharacterClips = append(characterTrack.CharacterClips, res.CharacterClips...)
			warnings = append(warnings, translateDialogueWarnings(res.Warnings)...)

			cursor += res.TotalDurationFrames
			globalBlockIndex++
		}

		var override *script.SceneBgmOverride
		if scene.Style != nil {
			override = scene.Style.Bgm
		}
		spans = append(spans, bgmtrack.SceneSpan{
			SceneID:  scene.ID,
			Start:    sceneStart,
			End:      cursor,
			Override: override,
		})
	}

	tl := timeline.Timeline{
		Version: timeline.Version,
		Meta: timeline.Meta{
			FPS:         in.Script.Video.FPS,
			Width:       in.Script.Video.Width,
			Height:      in.Script.Video.Height,
			TotalFrames: cursor,
		},
		Assets: timeline.Assets{Audio: audioAssets},
		Tracks: []timeline.Track{audioTrack, subtitleTrack, characterTrack},
	}

	if in.Script.Video.Bgm != nil {
		bgmResult := bgmtrack.Plan(in.Script.Video.Bgm, spans, cursor, in.Script.Video.FPS, in.BgmDurationFrames, in.BgmLoudnessGainDb)
		tl.Assets.Bgm = bgmResult.Assets
		if len(bgmResult.Clips) > 0 {
			tl.Tracks = append(tl.Tracks, timeline.Track{Type: timeline.TrackTypeBgm, BgmClips: bgmResult.Clips})
		}
		warnings = append(warnings, translateBgmWarnings(bgmResult.Warnings)...)
	}

	return finishTimeline(tl, warnings)
}

// finishTimeline self-validates an assembled Timeline before it leaves the
// compiler, split out from Compile so the egress-validation failure path
// (a compiler bug, never a bad-input path) is directly testable without
// needing pathological Script input to reach it.
func finishTimeline(tl timeline.Timeline, warnings []Warning) (Result, error) {
	if results := tl.Validate(); timeline.HasErrors(results) {
		return Result{}, newError(KindInvalidTimelineEmission, "%s", firstTimelineError(results))
	}
	return Result{Timeline: tl, Warnings: warnings}, nil
}

func translateDialogueWarnings(ws []dialogue.Warning) []Warning {
	out := make([]Warning, 0, len(ws))
	for _, w := range ws {
		out = append(out, Warning{Kind: WarningKind(w.Kind), Message: w.Message})
	}
	return out
}

func translateBgmWarnings(ws []bgmtrack.Warning) []Warning {
	out := make([]Warning, 0, len(ws))
	for _, w := range ws {
		out = append(out, Warning{Kind: WarningKind(w.Kind), Message: w.Message})
	}
	return out
}

func firstScriptError(results []script.ValidationResult) string {
	for _, r := range results {
		if r.Level == "error" {
			return r.Message
		}
	}
	return "unknown validation error"
}

func firstTimelineError(results []timeline.ValidationResult) string {
	for _, r := range results {
		if r.Level == "error" {
			return r.Message
		}
	}
	return "unknown validation error"
}

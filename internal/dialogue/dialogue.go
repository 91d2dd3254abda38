// Package dialogue emits the audio/subtitle/character clips for a single
// dialogue block, binding it to a pre-generated voice clip via the audio
// manifest. Binding is by stable key, never by text — duplicate lines share
// text but must resolve to their own manifest entries.
package dialogue

import (
	"fmt"

	"timelinec/internal/manifest"
	"timelinec/internal/script"
	"timelinec/internal/timeline"
	"timelinec/internal/units"
)

// WarningKind enumerates the recoverable, data-driven problems the dialogue
// rule can hit without aborting the compile.
type WarningKind string

const (
	WarningUnboundAudio    WarningKind = "UnboundAudio"
	WarningUnknownSpeaker  WarningKind = "UnknownSpeaker"
)

// Warning is a single recoverable finding surfaced back to the caller.
type Warning struct {
	Kind    WarningKind
	Message string
}

// FallbackDurationSeconds is the synthesized clip length used when a block
// has no manifest binding.
const FallbackDurationSeconds = 2.0

// Context carries the position of one dialogue block within the compile.
type Context struct {
	Script           script.Script
	Scene            script.Scene
	ManifestIndex    *manifest.Index
	RawManifest      manifest.Manifest
	CurrentFrame     int
	BlockIndex       int
	GlobalBlockIndex int
}

// Result is everything the timeline compiler needs to advance the frame
// cursor and populate the audio/subtitle/character tracks for one block.
type Result struct {
	AudioAssetID        string
	AudioAsset          timeline.AudioAsset
	AudioClip           timeline.AudioClip
	SubtitleClip        timeline.SubtitleClip
	CharacterClips      []timeline.CharacterClip
	TotalDurationFrames int
	Warnings            []Warning
}

// Emit applies the dialogue block rule (§4.4) to block within ctx.
func Emit(ctx Context, block script.DialogueBlock) Result {
	var warnings []Warning

	if _, ok := ctx.Script.Cast[block.Speaker]; !ok {
		warnings = append(warnings, Warning{
			Kind:    WarningUnknownSpeaker,
			Message: fmt.Sprintf("scene %q block %d: speaker %q not found in cast", ctx.Scene.ID, ctx.BlockIndex, block.Speaker),
		})
	}

	expectedAudioKey := fmt.Sprintf("%s:%d", ctx.Scene.ID, ctx.BlockIndex)
	fps := ctx.Script.Video.FPS

	entry, bound := bindEntry(ctx, block, expectedAudioKey)

	var durationFrames int
	var audioSrc string
	if bound && entry.DurationInSeconds > 0 {
		durationFrames = units.SecondsToFrames(entry.DurationInSeconds, fps)
		audioSrc = entry.AudioSrc
	} else {
		warnings = append(warnings, Warning{
			Kind:    WarningUnboundAudio,
			Message: fmt.Sprintf("scene %q block %d: no manifest binding for audio key %q, using fallback", ctx.Scene.ID, ctx.BlockIndex, expectedAudioKey),
		})
		durationFrames = fps * 2
		audioSrc = fmt.Sprintf("audio/%03d.wav", ctx.GlobalBlockIndex+1)
	}

	pauseSec := ctx.Script.Video.DefaultPauseSec
	if block.PauseSec != nil {
		pauseSec = *block.PauseSec
	}
	pauseFrames := units.SecondsToFrames(pauseSec, fps)
	totalDurationFrames := durationFrames + pauseFrames

	audioAssetID := fmt.Sprintf("audio_%03d", ctx.GlobalBlockIndex+1)
	start := ctx.CurrentFrame

	characterClips := []timeline.CharacterClip{
		{
			Start:       start,
			Duration:    durationFrames,
			CharacterID: block.Speaker,
			State:       timeline.CharacterState{IsTalking: true},
		},
	}
	if pauseFrames > 0 {
		characterClips = append(characterClips, timeline.CharacterClip{
			Start:       start + durationFrames,
			Duration:    pauseFrames,
			CharacterID: block.Speaker,
			State:       timeline.CharacterState{IsTalking: false},
		})
	}

	return Result{
		AudioAssetID: audioAssetID,
		AudioAsset:   timeline.AudioAsset{Src: audioSrc, DurationFrames: durationFrames},
		AudioClip:    timeline.AudioClip{AssetID: audioAssetID, Start: start, Duration: durationFrames},
		SubtitleClip: timeline.SubtitleClip{Start: start, Duration: totalDurationFrames, Text: block.Text},
		CharacterClips:      characterClips,
		TotalDurationFrames: totalDurationFrames,
		Warnings:            warnings,
	}
}

// bindEntry applies the binding order: fileName match, then audioKey match.
// It never matches by text.
func bindEntry(ctx Context, block script.DialogueBlock, expectedAudioKey string) (manifest.Entry, bool) {
	if block.FileName != "" {
		if e, ok := manifest.ByFileNameMatch(ctx.RawManifest, block.FileName); ok {
			return e, true
		}
	}
	key := expectedAudioKey
	if block.AudioKey != "" {
		key = block.AudioKey
	}
	return ctx.ManifestIndex.ByAudioKey(key)
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timelinec/internal/envelope"
	"timelinec/internal/interval"
	"timelinec/internal/timeline"
)

func newEnvelopeCmd() *cobra.Command {
	var (
		timelineFlag string
		clipIndex    int
		frame        int
	)

	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "Evaluate the BGM volume envelope for one clip at one frame",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnvelope(cmd, timelineFlag, clipIndex, frame)
		},
	}
	cmd.Flags().StringVar(&timelineFlag, "timeline", "", "Path to a compiled Timeline JSON document")
	cmd.Flags().IntVar(&clipIndex, "clip-index", 0, "Index into the bgm track's clip list")
	cmd.Flags().IntVar(&frame, "frame", 0, "Clip-local frame to evaluate")
	cmd.MarkFlagRequired("timeline")
	return cmd
}

func runEnvelope(cmd *cobra.Command, timelineFlag string, clipIndex, frame int) error {
	data, err := os.ReadFile(timelineFlag)
	if err != nil {
		return fmt.Errorf("read timeline: %w", err)
	}
	var tl timeline.Timeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return fmt.Errorf("parse timeline: %w", err)
	}

	var bgmClips []timeline.BgmClip
	var characterClips []timeline.CharacterClip
	for _, t := range tl.Tracks {
		switch t.Type {
		case timeline.TrackTypeBgm:
			bgmClips = t.BgmClips
		case timeline.TrackTypeCharacter:
			characterClips = t.CharacterClips
		}
	}

	if clipIndex < 0 || clipIndex >= len(bgmClips) {
		return fmt.Errorf("clip-index %d out of range (bgm track has %d clip(s))", clipIndex, len(bgmClips))
	}
	clip := bgmClips[clipIndex]

	var loudnessGainDb *float64
	if asset, ok := tl.Assets.Bgm[clip.AssetID]; ok {
		loudnessGainDb = asset.LoudnessGainDb
	}

	var duckIntervals []interval.Interval
	if clip.Ducking != nil && clip.Ducking.Enabled {
		var raw []interval.Interval
		for _, c := range characterClips {
			if c.State.IsTalking {
				raw = append(raw, interval.Interval{Start: c.Start, End: c.Start + c.Duration})
			}
		}
		duckIntervals = interval.Stabilize(raw, clip.Ducking.MergeGapFrames, clip.Ducking.MinHoldFrames, tl.Meta.TotalFrames)
	}

	gain := envelope.Volume(clip, frame, loudnessGainDb, duckIntervals, nil)

	if outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"clipIndex": clipIndex,
			"frame":     frame,
			"gain":      gain,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "clip %d @ frame %d: gain=%.6f\n", clipIndex, frame, gain)
	return nil
}

// Package envelope computes the per-frame BGM gain: base/idle/talk
// selection with attack/release smoothing, fade in/out, scene-crossfade
// transition, and loop-segment crossfade — a pure function of a clip, a
// frame, and the stabilized talking intervals from internal/interval.
package envelope

import (
	"math"

	"timelinec/internal/interval"
	"timelinec/internal/timeline"
	"timelinec/internal/units"
)

// SegmentWindow carries the loop-segment context needed to apply the
// additional per-segment crossfade multiplier at a given clip-local frame.
// Callers evaluating a frame during loop-segment overlap call Volume once
// per active segment, each with its own SegmentWindow, and sum the results
// (that summation, not modeled here, is what makes the crossfade seamless).
type SegmentWindow struct {
	// OffsetInSegment is localFrame's position within the segment, i.e.
	// localFrame - segment.ClipOffset.
	OffsetInSegment int
	Duration        int
	FadeInFrames    int
	FadeOutFrames   int
}

// Volume returns the linear gain, in [0, clip's maxGain], to apply at
// clip-local frame localFrame. duckIntervals must already be stabilized
// (internal/interval) and sorted by Start. seg is nil outside loop-segment
// overlap regions.
func Volume(clip timeline.BgmClip, localFrame int, loudnessGainDb *float64, duckIntervals []interval.Interval, seg *SegmentWindow) float64 {
	gains := ResolveGains(clip, loudnessGainDb)
	globalFrame := clip.Start + localFrame

	g := envelopeGain(clip, globalFrame, gains, duckIntervals)

	mul := fadeInMul(localFrame, clip.FadeInFrames)
	mul *= fadeOutMul(localFrame, clip.Duration, clip.FadeOutFrames)
	mul *= fadeInMul(localFrame, clip.TransitionInFrames)
	mul *= fadeOutMul(localFrame, clip.Duration, clip.TransitionOutFrames)
	if seg != nil {
		mul *= fadeInMul(seg.OffsetInSegment, seg.FadeInFrames)
		mul *= fadeOutMul(seg.OffsetInSegment, seg.Duration, seg.FadeOutFrames)
	}

	return units.Clamp(g*mul, 0, gains.Max)
}

// envelopeGain selects between talk, idle, and the attack/release ramp
// between them, using nearest-interval distances rather than a per-frame
// convolution (this is why duckIntervals must be pre-stabilized: the
// distance search below assumes sorted, disjoint intervals).
func envelopeGain(clip timeline.BgmClip, globalFrame int, gains Gains, duckIntervals []interval.Interval) float64 {
	for _, iv := range duckIntervals {
		if globalFrame >= iv.Start && globalFrame < iv.End {
			return gains.Talk
		}
	}

	attackFrames, releaseFrames := 1, 1
	if clip.Ducking != nil {
		attackFrames = units.MaxInt(1, clip.Ducking.AttackFrames)
		releaseFrames = units.MaxInt(1, clip.Ducking.ReleaseFrames)
	}

	dStart := math.MaxInt
	for _, iv := range duckIntervals {
		if iv.Start > globalFrame {
			if d := iv.Start - globalFrame; d < dStart {
				dStart = d
			}
		}
	}
	dEnd := math.MaxInt
	for _, iv := range duckIntervals {
		if iv.End <= globalFrame {
			if d := globalFrame - iv.End; d < dEnd {
				dEnd = d
			}
		}
	}

	if dStart <= attackFrames {
		frac := 1 - float64(dStart)/float64(attackFrames)
		return gains.Idle - (gains.Idle-gains.Talk)*frac
	}
	if dEnd < releaseFrames {
		frac := float64(dEnd) / float64(releaseFrames)
		return gains.Talk + (gains.Idle-gains.Talk)*frac
	}
	return gains.Idle
}

// fadeInMul ramps linearly from 0 to 1 over the first frames frames.
func fadeInMul(localFrame, frames int) float64 {
	if frames <= 0 {
		return 1
	}
	if localFrame < 0 {
		return 0
	}
	if localFrame >= frames {
		return 1
	}
	return units.Clamp(float64(localFrame)/float64(frames), 0, 1)
}

// fadeOutMul ramps linearly from 1 to 0 over the last frames frames of a
// span of the given total duration.
func fadeOutMul(localFrame, duration, frames int) float64 {
	if frames <= 0 {
		return 1
	}
	framesFromEnd := duration - localFrame
	if framesFromEnd >= frames {
		return 1
	}
	if framesFromEnd <= 0 {
		return 0
	}
	return units.Clamp(float64(framesFromEnd)/float64(frames), 0, 1)
}

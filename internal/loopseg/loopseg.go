// Package loopseg splits a BGM clip into overlapping loop segments, each
// naming the region of the source audio file it plays and the crossfade
// window it shares with its neighbor. The overlap is intentional: the
// volume envelope's crossfade multipliers (internal/envelope) make the
// transition between segments seamless.
package loopseg

import "timelinec/internal/units"

// Segment is one span of a BGM clip that plays a specific region of the
// underlying audio file.
type Segment struct {
	ClipOffset      int
	Duration        int
	AudioStartFrame int
	FadeInFrames    int
	FadeOutFrames   int
}

// Generate splits a clip of clipDuration frames, backed by an audio file of
// audioDurationFrames frames, into loop segments over the window
// [loopStart, loopEnd) (a nil loopStart means 0, a nil loopEnd means the end
// of the audio), crossfading by up to crossfadeFrames at each internal
// boundary.
//
// An out-of-range or empty loop window falls back to looping the full audio
// file [0, audioDurationFrames) (InvalidLoopWindow, §7) rather than erroring.
// Only when the audio itself has no positive length does the caller get a
// single segment spanning min(clipDuration, audioDurationFrames) with no
// crossfade.
func Generate(clipDuration, audioDurationFrames int, loopStart, loopEnd *int, crossfadeFrames int) []Segment {
	if clipDuration <= 0 {
		return nil
	}

	lsPrime := 0
	if loopStart != nil {
		lsPrime = *loopStart
	}
	lePrime := audioDurationFrames
	if loopEnd != nil {
		lePrime = *loopEnd
	}
	if lePrime <= lsPrime || lsPrime < 0 || lePrime > audioDurationFrames {
		lsPrime, lePrime = 0, audioDurationFrames
	}

	loopLen := lePrime - lsPrime
	if loopLen <= 0 {
		dur := units.MinInt(clipDuration, units.MaxInt(audioDurationFrames, 0))
		return []Segment{{ClipOffset: 0, Duration: dur, AudioStartFrame: 0, FadeInFrames: 0, FadeOutFrames: 0}}
	}

	crossfade := units.MinInt(units.MaxInt(crossfadeFrames, 0), loopLen/2)

	var segments []Segment
	isFirst := true
	clipOffset := 0
	for clipOffset < clipDuration {
		audioStart := lsPrime
		segLen := loopLen
		if isFirst {
			audioStart = 0
			segLen = lePrime
		}

		remaining := clipDuration - clipOffset
		segDur := units.MinInt(segLen, remaining)
		isLast := clipOffset+segDur >= clipDuration

		duration := segDur
		if !isLast {
			duration += crossfade
		}

		fadeIn := 0
		if !isFirst {
			fadeIn = crossfade
		}
		fadeOut := 0
		if !isLast {
			fadeOut = crossfade
		}

		segments = append(segments, Segment{
			ClipOffset:      clipOffset,
			Duration:        duration,
			AudioStartFrame: audioStart,
			FadeInFrames:    fadeIn,
			FadeOutFrames:   fadeOut,
		})

		if segDur <= 0 {
			break
		}
		clipOffset += segDur
		isFirst = false
	}
	return segments
}

package compile

import (
	"encoding/json"
	"testing"

	"timelinec/internal/manifest"
	"timelinec/internal/script"
	"timelinec/internal/timeline"
)

func baseScript() script.Script {
	return script.Script{
		Version: script.Version,
		Video:   script.VideoConfig{FPS: 30, Width: 1920, Height: 1080},
		Cast: map[string]script.CastEntry{
			"a": {Voice: script.VoiceConfig{Engine: "voicevox", SpeakerID: 1}},
		},
	}
}

func dialogueScene(id string, blocks ...script.DialogueBlock) script.Scene {
	bs := make([]script.Block, len(blocks))
	for i, db := range blocks {
		bs[i] = db
	}
	return script.Scene{ID: id, Blocks: bs}
}

// E1
func TestCompileE1SingleDialogueNoPause(t *testing.T) {
	s := baseScript()
	s.Scenes = []script.Scene{dialogueScene("s0", script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "hi"})}
	m := manifest.Manifest{{AudioKey: "s0:0", AudioSrc: "audio/001.wav", DurationInSeconds: 1.0, SpeakerID: 3, Text: "hi"}}

	res, err := Compile(Input{Script: s, Manifest: m})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if res.Timeline.Meta.TotalFrames != 30 {
		t.Fatalf("totalFrames = %d, want 30", res.Timeline.Meta.TotalFrames)
	}
	asset, ok := res.Timeline.Assets.Audio["audio_001"]
	if !ok || asset.Src != "audio/001.wav" || asset.DurationFrames != 30 {
		t.Fatalf("unexpected audio_001 asset: %+v ok=%v", asset, ok)
	}
}

// E2
func TestCompileE2DuplicateTextBoundByKeyOrderIndependent(t *testing.T) {
	s := baseScript()
	s.Scenes = []script.Scene{dialogueScene("s0",
		script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "ok", AudioKey: "s0:0"},
		script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "ok", AudioKey: "s0:1"},
	)}
	forward := manifest.Manifest{
		{AudioKey: "s0:0", AudioSrc: "a.wav", Text: "ok", DurationInSeconds: 0.5},
		{AudioKey: "s0:1", AudioSrc: "b.wav", Text: "ok", DurationInSeconds: 0.7},
	}
	reversed := manifest.Manifest{forward[1], forward[0]}

	for _, m := range []manifest.Manifest{forward, reversed} {
		res, err := Compile(Input{Script: s, Manifest: m})
		if err != nil {
			t.Fatalf("Compile returned error: %v", err)
		}
		track := res.Timeline.Tracks[0]
		if len(track.AudioClips) != 2 || track.AudioClips[0].Duration != 15 || track.AudioClips[1].Duration != 21 {
			t.Fatalf("unexpected audio clips: %+v", track.AudioClips)
		}
	}
}

// E3
func TestCompileE3FallbackWarns(t *testing.T) {
	s := baseScript()
	s.Scenes = []script.Scene{dialogueScene("s0", script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "hi"})}

	res, err := Compile(Input{Script: s, Manifest: nil})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	asset := res.Timeline.Assets.Audio["audio_001"]
	if asset.Src != "audio/001.wav" || asset.DurationFrames != 60 {
		t.Fatalf("unexpected fallback asset: %+v", asset)
	}
	found := false
	for _, w := range res.Warnings {
		if w.Kind == WarningUnboundAudio {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UnboundAudio warning, got %+v", res.Warnings)
	}
}

// E4
func TestCompileE4BgmSingleScenePreset(t *testing.T) {
	s := baseScript()
	s.Video.Bgm = &script.BgmConfig{Src: "bgm/main.mp3", Preset: script.PresetTalk}
	s.Video.DefaultPauseSec = 0.5
	s.Scenes = []script.Scene{dialogueScene("s0", script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "hi"})}
	m := manifest.Manifest{{AudioKey: "s0:0", AudioSrc: "v.wav", DurationInSeconds: 2.0}}

	res, err := Compile(Input{Script: s, Manifest: m, BgmDurationFrames: map[string]int{}})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	var found bool
	for _, tr := range res.Timeline.Tracks {
		if tr.Type == "bgm" {
			found = true
			if len(tr.BgmClips) != 1 {
				t.Fatalf("expected exactly one bgm clip, got %d", len(tr.BgmClips))
			}
			c := tr.BgmClips[0]
			if c.Start != 0 || c.Duration != 75 {
				t.Fatalf("bgm clip span = (%d,%d), want (0,75)", c.Start, c.Duration)
			}
			if c.FadeInFrames != 30 || c.FadeOutFrames != 30 {
				t.Fatalf("bgm fade frames = (%d,%d), want (30,30)", c.FadeInFrames, c.FadeOutFrames)
			}
		}
	}
	if !found {
		t.Fatal("expected a bgm track to be present")
	}
}

// UnknownBlockType defensive branch: constructed directly since JSON decode
// already rejects unknown block types at the script.Scene.UnmarshalJSON
// layer, this exercises the compiler driver's own defensive default.
type fakeBlock struct{}

func (fakeBlock) BlockType() script.BlockType { return script.BlockType("unknown") }

func TestCompileUnknownBlockTypeIsFatal(t *testing.T) {
	s := baseScript()
	s.Scenes = []script.Scene{{ID: "s0", Blocks: []script.Block{fakeBlock{}}}}

	_, err := Compile(Input{Script: s})
	cErr, ok := err.(*Error)
	if !ok || cErr.Kind != KindUnknownBlockType {
		t.Fatalf("expected UnknownBlockType error, got %v", err)
	}
}

// InvalidTimelineEmission: Compile itself can never produce a Timeline that
// fails egress validation from any Script that passes ingress validation
// (every clip it emits is constructed from an already-advancing cursor and
// a freshly-registered asset), so this exercises the same finishTimeline
// tail Compile calls directly, the way TestCompileUnknownBlockTypeIsFatal
// exercises its defensive branch via a hand-built Block.
func TestFinishTimelineInvalidEmissionIsFatal(t *testing.T) {
	tl := timeline.Timeline{
		Version: "bogus",
		Meta:    timeline.Meta{FPS: 30, Width: 1920, Height: 1080},
		Assets:  timeline.Assets{Audio: map[string]timeline.AudioAsset{}},
	}

	_, err := finishTimeline(tl, nil)
	cErr, ok := err.(*Error)
	if !ok || cErr.Kind != KindInvalidTimelineEmission {
		t.Fatalf("expected InvalidTimelineEmission error, got %v", err)
	}
}

func TestCompileInvalidScriptIsFatal(t *testing.T) {
	s := baseScript()
	s.Version = "bogus"

	_, err := Compile(Input{Script: s})
	cErr, ok := err.(*Error)
	if !ok || cErr.Kind != KindInvalidScript {
		t.Fatalf("expected InvalidScript error, got %v", err)
	}
}

// P10: compile is pure.
func TestCompileIsPure(t *testing.T) {
	s := baseScript()
	s.Scenes = []script.Scene{dialogueScene("s0", script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "hi"})}
	m := manifest.Manifest{{AudioKey: "s0:0", AudioSrc: "v.wav", DurationInSeconds: 1.0}}

	res1, err1 := Compile(Input{Script: s, Manifest: m})
	res2, err2 := Compile(Input{Script: s, Manifest: m})
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v %v", err1, err2)
	}
	b1, _ := json.Marshal(res1.Timeline)
	b2, _ := json.Marshal(res2.Timeline)
	if string(b1) != string(b2) {
		t.Fatal("compile is not pure: identical inputs produced different output")
	}
}

// P2: totalFrames equals the sum of per-block durationFrames+pauseFrames.
func TestCompileTotalFramesConservation(t *testing.T) {
	s := baseScript()
	s.Video.DefaultPauseSec = 0.2
	s.Scenes = []script.Scene{dialogueScene("s0",
		script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "one"},
		script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "two"},
	)}
	m := manifest.Manifest{
		{AudioKey: "s0:0", AudioSrc: "a.wav", DurationInSeconds: 1.0},
		{AudioKey: "s0:1", AudioSrc: "b.wav", DurationInSeconds: 2.0},
	}
	res, err := Compile(Input{Script: s, Manifest: m})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	// fps=30: block1 = 30+6=36, block2 = 60+6=66, total=102.
	if res.Timeline.Meta.TotalFrames != 102 {
		t.Fatalf("totalFrames = %d, want 102", res.Timeline.Meta.TotalFrames)
	}
}

// P3: every track's clips are sorted and non-overlapping, and the character
// track ends exactly at totalFrames.
func TestCompileTracksAreMonotonicAndNonOverlapping(t *testing.T) {
	s := baseScript()
	s.Video.DefaultPauseSec = 0.3
	s.Scenes = []script.Scene{
		dialogueScene("s0",
			script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "one"},
			script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "two"},
		),
		dialogueScene("s1",
			script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "three"},
		),
	}
	m := manifest.Manifest{
		{AudioKey: "s0:0", AudioSrc: "a.wav", DurationInSeconds: 1.0},
		{AudioKey: "s0:1", AudioSrc: "b.wav", DurationInSeconds: 0.5},
		{AudioKey: "s1:0", AudioSrc: "c.wav", DurationInSeconds: 2.0},
	}
	res, err := Compile(Input{Script: s, Manifest: m})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	for _, tr := range res.Timeline.Tracks {
		var end int
		check := func(start, duration int) {
			if start < end {
				t.Fatalf("track %s: clip start %d overlaps previous end %d", tr.Type, start, end)
			}
			end = start + duration
		}
		switch tr.Type {
		case "audio":
			for _, c := range tr.AudioClips {
				check(c.Start, c.Duration)
			}
		case "subtitle":
			for _, c := range tr.SubtitleClips {
				check(c.Start, c.Duration)
			}
		case "character":
			for _, c := range tr.CharacterClips {
				check(c.Start, c.Duration)
			}
			if end != res.Timeline.Meta.TotalFrames {
				t.Fatalf("character track ends at %d, want totalFrames %d", end, res.Timeline.Meta.TotalFrames)
			}
		}
	}
}

// P4: a block with a positive trailing pause produces a talking clip
// immediately followed by a contiguous idle clip covering exactly the
// pause, with no gap or overlap between the two.
func TestCompileTrailingPauseProducesContiguousIdleClip(t *testing.T) {
	s := baseScript()
	s.Video.DefaultPauseSec = 0.4
	s.Scenes = []script.Scene{dialogueScene("s0", script.DialogueBlock{Type: script.BlockTypeDialogue, Speaker: "a", Text: "hi"})}
	m := manifest.Manifest{{AudioKey: "s0:0", AudioSrc: "a.wav", DurationInSeconds: 1.0}}

	res, err := Compile(Input{Script: s, Manifest: m})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	var clips []struct {
		Start     int
		Duration  int
		IsTalking bool
	}
	for _, tr := range res.Timeline.Tracks {
		if tr.Type == "character" {
			for _, c := range tr.CharacterClips {
				clips = append(clips, struct {
					Start     int
					Duration  int
					IsTalking bool
				}{c.Start, c.Duration, c.State.IsTalking})
			}
		}
	}
	if len(clips) != 2 {
		t.Fatalf("expected talk clip + idle clip, got %d character clips: %+v", len(clips), clips)
	}
	talk, idle := clips[0], clips[1]
	if !talk.IsTalking || idle.IsTalking {
		t.Fatalf("expected [talking, idle], got %+v", clips)
	}
	if talk.Start != 0 || talk.Duration != 30 {
		t.Fatalf("talk clip = %+v, want start=0 duration=30", talk)
	}
	if idle.Start != talk.Start+talk.Duration || idle.Duration != 12 {
		t.Fatalf("idle clip = %+v, want contiguous 12-frame pause after talk", idle)
	}
}

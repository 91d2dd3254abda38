package script

import "fmt"

// ValidationResult captures a single structural validation finding as a
// level/message pair (internal/timeline uses the same shape).
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

func errorf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: "error", Message: fmt.Sprintf(format, args...)}
}

// Validate runs all structural validations against the Script and returns
// the accumulated findings. A non-empty result containing any "error" level
// finding means the Script must not be compiled (InvalidScript, see
// internal/compile).
func (s Script) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, s.validateVersion()...)
	results = append(results, s.validateVideo()...)
	results = append(results, s.validateCast()...)
	results = append(results, s.validateScenes()...)
	return results
}

// HasErrors reports whether any finding is at "error" level.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func (s Script) validateVersion() []ValidationResult {
	if s.Version != Version {
		return []ValidationResult{errorf("version must be %q, got %q", Version, s.Version)}
	}
	return nil
}

func (s Script) validateVideo() []ValidationResult {
	var results []ValidationResult
	if s.Video.FPS <= 0 {
		results = append(results, errorf("video.fps must be > 0, got %d", s.Video.FPS))
	}
	if s.Video.Width <= 0 {
		results = append(results, errorf("video.width must be > 0, got %d", s.Video.Width))
	}
	if s.Video.Height <= 0 {
		results = append(results, errorf("video.height must be > 0, got %d", s.Video.Height))
	}
	if s.Video.DefaultPauseSec < 0 {
		results = append(results, errorf("video.defaultPauseSec must be >= 0, got %v", s.Video.DefaultPauseSec))
	}
	if bgm := s.Video.Bgm; bgm != nil {
		results = append(results, validateBgmConfig("video.bgm", *bgm)...)
	}
	return results
}

func (s Script) validateCast() []ValidationResult {
	var results []ValidationResult
	for id, entry := range s.Cast {
		if entry.Voice.Engine == "" {
			results = append(results, errorf("cast[%q].voice.engine is required", id))
		}
		if entry.Voice.SpeakerID < 0 {
			results = append(results, errorf("cast[%q].voice.speakerId must be >= 0, got %d", id, entry.Voice.SpeakerID))
		}
	}
	return results
}

func (s Script) validateScenes() []ValidationResult {
	var results []ValidationResult
	if len(s.Scenes) == 0 {
		results = append(results, errorf("scenes must contain at least one scene"))
		return results
	}

	seenIDs := make(map[string]bool, len(s.Scenes))
	for si, scene := range s.Scenes {
		if scene.ID == "" {
			results = append(results, errorf("scenes[%d]: id is required", si))
		} else if seenIDs[scene.ID] {
			results = append(results, errorf("scenes[%d]: duplicate scene id %q", si, scene.ID))
		}
		seenIDs[scene.ID] = true

		if scene.Style != nil && scene.Style.Bgm != nil {
			results = append(results, validateBgmConfig(fmt.Sprintf("scenes[%d].style.bgm", si), scene.Style.Bgm.BgmConfig)...)
			if t := scene.Style.Bgm.TransitionSec; t != nil && *t < 0 {
				results = append(results, errorf("scenes[%d].style.bgm.transitionSec must be >= 0, got %v", si, *t))
			}
		}

		for bi, block := range scene.Blocks {
			results = append(results, validateBlock(si, bi, block)...)
		}
	}
	return results
}

func validateBlock(sceneIndex, blockIndex int, block Block) []ValidationResult {
	db, ok := block.(DialogueBlock)
	if !ok {
		// Block types without a rule here are left to the compiler's
		// dispatch, which rejects them as UnknownBlockType.
		return nil
	}

	var results []ValidationResult
	if db.Speaker == "" {
		results = append(results, errorf("scenes[%d].blocks[%d]: speaker is required", sceneIndex, blockIndex))
	}
	if db.Text == "" {
		results = append(results, errorf("scenes[%d].blocks[%d]: text must not be empty", sceneIndex, blockIndex))
	}
	if db.PauseSec != nil && *db.PauseSec < 0 {
		results = append(results, errorf("scenes[%d].blocks[%d]: pauseSec must be >= 0, got %v", sceneIndex, blockIndex, *db.PauseSec))
	}
	return results
}

func validateBgmConfig(path string, cfg BgmConfig) []ValidationResult {
	var results []ValidationResult
	switch cfg.Preset {
	case "", PresetTalk, PresetCalm, PresetHype, PresetNone:
	default:
		results = append(results, errorf("%s.preset: unknown preset %q", path, cfg.Preset))
	}
	if cfg.VolumeDb != nil && cfg.Volume != nil {
		results = append(results, errorf("%s: volumeDb and volume are mutually exclusive", path))
	}
	if cfg.Volume != nil && (*cfg.Volume < 0 || *cfg.Volume > 1) {
		results = append(results, errorf("%s.volume must be within [0,1], got %v", path, *cfg.Volume))
	}
	if cfg.FadeInSec != nil && *cfg.FadeInSec < 0 {
		results = append(results, errorf("%s.fadeInSec must be >= 0, got %v", path, *cfg.FadeInSec))
	}
	if cfg.FadeOutSec != nil && *cfg.FadeOutSec < 0 {
		results = append(results, errorf("%s.fadeOutSec must be >= 0, got %v", path, *cfg.FadeOutSec))
	}
	if cfg.LoopCrossfadeSec != nil && *cfg.LoopCrossfadeSec < 0 {
		results = append(results, errorf("%s.loopCrossfadeSec must be >= 0, got %v", path, *cfg.LoopCrossfadeSec))
	}
	if cfg.LoopStartSec != nil && cfg.LoopEndSec != nil && *cfg.LoopStartSec >= *cfg.LoopEndSec {
		results = append(results, errorf("%s: loopStartSec must be < loopEndSec", path))
	}
	if d := cfg.Ducking; d != nil {
		if d.DuckVolume != nil && (*d.DuckVolume < 0 || *d.DuckVolume > 1) {
			results = append(results, errorf("%s.ducking.duckVolume must be within [0,1], got %v", path, *d.DuckVolume))
		}
		if d.AttackSec != nil && *d.AttackSec < 0 {
			results = append(results, errorf("%s.ducking.attackSec must be >= 0, got %v", path, *d.AttackSec))
		}
		if d.ReleaseSec != nil && *d.ReleaseSec < 0 {
			results = append(results, errorf("%s.ducking.releaseSec must be >= 0, got %v", path, *d.ReleaseSec))
		}
	}
	return results
}

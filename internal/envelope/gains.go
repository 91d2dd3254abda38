package envelope

import (
	"timelinec/internal/bgmconfig"
	"timelinec/internal/timeline"
	"timelinec/internal/units"
)

// Gains is the ladder of linear gain multipliers a clip evaluates against:
// the resting bed level, the level while idle (boosted), the level while a
// speaker talks (ducked), and the hard ceiling nothing may exceed.
type Gains struct {
	Base float64
	Idle float64
	Talk float64
	Max  float64
}

// ResolveGains computes a clip's gain ladder from its resolved fields and,
// when present, the backing asset's measured loudness offset.
func ResolveGains(clip timeline.BgmClip, loudnessGainDb *float64) Gains {
	base := resolveBaseGain(clip)
	if loudnessGainDb != nil {
		base *= units.DbToGain(*loudnessGainDb)
	}

	idleBoostDb := bgmconfig.DefaultIdleBoostDb
	if clip.IdleBoostDb != nil {
		idleBoostDb = *clip.IdleBoostDb
	}
	idle := base * units.DbToGain(idleBoostDb)

	talk := resolveTalkGain(clip, base)

	maxGainDb := bgmconfig.DefaultMaxGainDb
	if clip.MaxGainDb != nil {
		maxGainDb = *clip.MaxGainDb
	}
	maxGain := units.DbToGain(units.ClampDb(maxGainDb))

	return Gains{Base: base, Idle: idle, Talk: talk, Max: maxGain}
}

func resolveBaseGain(clip timeline.BgmClip) float64 {
	switch {
	case clip.VolumeDb != nil:
		return units.DbToGain(*clip.VolumeDb)
	case clip.Volume != nil:
		return units.Clamp(*clip.Volume, 0, 1)
	default:
		return units.DbToGain(bgmconfig.DefaultBaseDb)
	}
}

func resolveTalkGain(clip timeline.BgmClip, base float64) float64 {
	d := clip.Ducking
	if d == nil || !d.Enabled {
		return base
	}
	switch {
	case d.DuckDeltaDb != nil:
		return base * units.DbToGain(units.Clamp(*d.DuckDeltaDb, units.MinDb, 0))
	case d.DuckVolumeDb != nil:
		return units.DbToGain(units.Clamp(*d.DuckVolumeDb, units.MinDb, units.MaxDb))
	case d.DuckVolume != nil:
		return base * units.Clamp(*d.DuckVolume, 0, 1)
	default:
		return base * units.DbToGain(bgmconfig.DefaultDuckDeltaDb)
	}
}

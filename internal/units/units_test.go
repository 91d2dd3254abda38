package units

import "testing"

func TestSecondsToFrames(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		fps     int
		want    int
	}{
		{"zero", 0, 30, 0},
		{"negative", -1, 30, 0},
		{"exact", 1.0, 30, 30},
		{"rounds up", 1.001, 30, 31},
		{"half second at 30fps", 0.5, 30, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SecondsToFrames(tt.seconds, tt.fps); got != tt.want {
				t.Fatalf("SecondsToFrames(%v, %v) = %d, want %d", tt.seconds, tt.fps, got, tt.want)
			}
		})
	}
}

func TestDbGainRoundTrip(t *testing.T) {
	for _, db := range []float64{-60, -12, -3, 0, 3, 6} {
		gain := DbToGain(db)
		back := GainToDb(gain)
		if diff := back - db; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("round trip for %v dB produced %v dB", db, back)
		}
	}
}

func TestGainToDbNonPositive(t *testing.T) {
	if got := GainToDb(0); got != MinDb {
		t.Fatalf("GainToDb(0) = %v, want %v", got, MinDb)
	}
	if got := GainToDb(-1); got != MinDb {
		t.Fatalf("GainToDb(-1) = %v, want %v", got, MinDb)
	}
}

func TestClampDb(t *testing.T) {
	if got := ClampDb(-100); got != MinDb {
		t.Fatalf("ClampDb(-100) = %v, want %v", got, MinDb)
	}
	if got := ClampDb(100); got != MaxDb {
		t.Fatalf("ClampDb(100) = %v, want %v", got, MaxDb)
	}
	if got := ClampDb(-3); got != -3 {
		t.Fatalf("ClampDb(-3) = %v, want -3", got)
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(5, 0, 10); got != 5 {
		t.Fatalf("ClampInt(5,0,10) = %d", got)
	}
	if got := ClampInt(-5, 0, 10); got != 0 {
		t.Fatalf("ClampInt(-5,0,10) = %d", got)
	}
	if got := ClampInt(15, 0, 10); got != 10 {
		t.Fatalf("ClampInt(15,0,10) = %d", got)
	}
}

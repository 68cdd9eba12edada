package models

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestKDRZeroDeaths(t *testing.T) {
	p := PlayerStats{Kills: 12, Deaths: 0}
	if !almostEqual(p.KDR(), 12) {
		t.Errorf("KDR with zero deaths should equal kills, got %f", p.KDR())
	}

	p = PlayerStats{Kills: 10, Deaths: 4}
	if !almostEqual(p.KDR(), 2.5) {
		t.Errorf("expected KDR 2.5, got %f", p.KDR())
	}
}

func TestHSPZeroKills(t *testing.T) {
	p := PlayerStats{Kills: 0, HeadshotKills: 3}
	if p.HSP() != 0 {
		t.Errorf("HSP with zero kills should be 0, got %f", p.HSP())
	}

	p = PlayerStats{Kills: 10, HeadshotKills: 4}
	if !almostEqual(p.HSP(), 0.4) {
		t.Errorf("expected HSP 0.4, got %f", p.HSP())
	}
}

func TestADRZeroRounds(t *testing.T) {
	p := PlayerStats{Damage: 900, RoundsPlayed: 0}
	if p.ADR() != 0 {
		t.Errorf("ADR with zero rounds should be 0, got %f", p.ADR())
	}

	p = PlayerStats{Damage: 900, RoundsPlayed: 10}
	if !almostEqual(p.ADR(), 90) {
		t.Errorf("expected ADR 90, got %f", p.ADR())
	}
}

func TestRatingZeroRounds(t *testing.T) {
	p := PlayerStats{Kills: 20, RoundsPlayed: 0}
	if p.Rating() != 0 {
		t.Errorf("Rating with zero rounds should be 0, got %f", p.Rating())
	}
}

func TestRatingKnownValue(t *testing.T) {
	p := PlayerStats{
		Kills:        30,
		Deaths:       15,
		RoundsPlayed: 30,
		K1:           10,
		K2:           4,
		K3:           2,
		K4:           0,
		K5:           0,
	}

	killRating := (30.0 / 30.0) / 0.679
	survivalRating := ((30.0 - 15.0) / 30.0) / 0.317
	killcount := float64(10 + 4*4 + 9*2)
	multiKillRating := (killcount / 30.0) / 1.277
	want := (killRating + 0.7*survivalRating + multiKillRating) / 2.7

	if !almostEqual(p.Rating(), want) {
		t.Errorf("expected rating %f, got %f", want, p.Rating())
	}
}

func TestFirstKills(t *testing.T) {
	p := PlayerStats{FirstKillT: 3, FirstKillCT: 2}
	if p.FirstKills() != 5 {
		t.Errorf("expected 5 first kills, got %d", p.FirstKills())
	}
}

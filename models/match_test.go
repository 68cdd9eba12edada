package models

import (
	"testing"
	"time"
)

func TestMatchStatus(t *testing.T) {
	now := time.Now()

	m := Match{}
	if m.Status() != MatchPending {
		t.Errorf("empty match should be pending, got %s", m.Status())
	}

	m.StartTime = &now
	if m.Status() != MatchLive {
		t.Errorf("match with start time should be live, got %s", m.Status())
	}

	m.EndTime = &now
	if m.Status() != MatchFinished {
		t.Errorf("match with end time should be finished, got %s", m.Status())
	}

	m.Cancelled = true
	if m.Status() != MatchCancelled {
		t.Errorf("cancelled flag should dominate, got %s", m.Status())
	}
	if !m.Finalized() {
		t.Error("cancelled match should be finalized")
	}
}

func TestValidTransition(t *testing.T) {
	allowed := []struct{ from, to MatchState }{
		{MatchPending, MatchLive},
		{MatchPending, MatchCancelled},
		{MatchPending, MatchFinished},
		{MatchLive, MatchFinished},
		{MatchLive, MatchCancelled},
	}
	for _, tr := range allowed {
		if !ValidTransition(tr.from, tr.to) {
			t.Errorf("transition %s -> %s should be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to MatchState }{
		{MatchFinished, MatchLive},
		{MatchFinished, MatchCancelled},
		{MatchCancelled, MatchLive},
		{MatchCancelled, MatchFinished},
		{MatchLive, MatchPending},
	}
	for _, tr := range denied {
		if ValidTransition(tr.from, tr.to) {
			t.Errorf("transition %s -> %s should be denied", tr.from, tr.to)
		}
	}
}

func TestMapsToWin(t *testing.T) {
	cases := []struct {
		maxMaps int
		want    int
	}{
		{1, 1},
		{2, 2},
		{3, 2},
		{5, 3},
		{7, 4},
	}
	for _, tc := range cases {
		m := Match{MaxMaps: tc.maxMaps}
		if got := m.MapsToWin(); got != tc.want {
			t.Errorf("MapsToWin with %d maps = %d, want %d", tc.maxMaps, got, tc.want)
		}
	}
}

func TestMappool(t *testing.T) {
	m := Match{VetoMappool: "de_dust2 de_mirage de_inferno"}
	pool := m.Mappool()
	if len(pool) != 3 || pool[0] != "de_dust2" || pool[2] != "de_inferno" {
		t.Errorf("unexpected mappool %v", pool)
	}

	m.VetoMappool = ""
	if m.Mappool() != nil {
		t.Error("empty mappool should return nil")
	}
}

func TestStatusString(t *testing.T) {
	now := time.Now()
	m := Match{StartTime: &now, MaxMaps: 3, Team1Score: 2, Team2Score: 1}
	if m.StatusString() != "Live, 2:1" {
		t.Errorf("unexpected status string %q", m.StatusString())
	}
}

func TestCurrentScoreSingleMap(t *testing.T) {
	now := time.Now()
	m := Match{StartTime: &now, MaxMaps: 1}

	// No map row reported yet.
	if t1, t2 := m.CurrentScore(); t1 != 0 || t2 != 0 {
		t.Errorf("expected 0:0 before the map starts, got %d:%d", t1, t2)
	}

	m.MapStats = []MapStats{{MapNumber: 0, Team1Score: 7, Team2Score: 5}}
	if t1, t2 := m.CurrentScore(); t1 != 7 || t2 != 5 {
		t.Errorf("expected 7:5 from the map row, got %d:%d", t1, t2)
	}
	if m.StatusString() != "Live, 7:5" {
		t.Errorf("unexpected status string %q", m.StatusString())
	}

	// A longer series counts maps won, not round scores.
	m.MaxMaps = 3
	m.Team1Score = 1
	if t1, t2 := m.CurrentScore(); t1 != 1 || t2 != 0 {
		t.Errorf("expected 1:0 from the aggregates, got %d:%d", t1, t2)
	}
}

package utils

import "testing"

func TestAsInt(t *testing.T) {
	if AsInt("123", 0) != 123 {
		t.Error("expected 123")
	}
	if AsInt("not a number", 7) != 7 {
		t.Error("expected fallback on junk input")
	}
	if AsInt("", 7) != 7 {
		t.Error("expected fallback on empty input")
	}
	if AsInt("-5", 0) != -5 {
		t.Error("expected -5")
	}
}

func TestFormatMapName(t *testing.T) {
	cases := map[string]string{
		"de_dust2":   "Dust II",
		"de_cbble":   "Cobblestone",
		"de_inferno": "Inferno",
		"cs_office":  "Office",
		"aim_map":    "Map",
		"somethingelse": "Somethingelse",
	}
	for in, want := range cases {
		if got := FormatMapName(in); got != want {
			t.Errorf("FormatMapName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateAPIKey(t *testing.T) {
	key := GenerateAPIKey(24)
	if len(key) != 24 {
		t.Fatalf("expected 24 characters, got %d", len(key))
	}
	for _, r := range key {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			t.Fatalf("unexpected character %q in api key", r)
		}
	}

	if GenerateAPIKey(24) == key {
		t.Error("two generated keys should not collide")
	}
}

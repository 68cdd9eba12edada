package rcon

import "testing"

func TestCommandStrings(t *testing.T) {
	if got := CmdLoadMatchURL("panel.local/api/match/7/config"); got != "get5_loadmatch_url panel.local/api/match/7/config" {
		t.Errorf("unexpected load command %q", got)
	}
	if got := CmdWebAPIKey("ABC123"); got != "get5_web_api_key ABC123" {
		t.Errorf("unexpected key command %q", got)
	}
	if got := CmdAddPlayer("76561198000000001", "team2"); got != "get5_addplayer 76561198000000001 team2" {
		t.Errorf("unexpected addplayer command %q", got)
	}
	if got := CmdListBackups(7); got != "get5_listbackups 7" {
		t.Errorf("unexpected listbackups command %q", got)
	}
	if got := CmdCheckAuths(true); got != "get5_check_auths 1" {
		t.Errorf("unexpected check_auths command %q", got)
	}
	if got := CmdCheckAuths(false); got != "get5_check_auths 0" {
		t.Errorf("unexpected check_auths command %q", got)
	}
}

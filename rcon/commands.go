// rcon/commands.go - the command surface the panel sends to game servers
package rcon

import "fmt"

// Commands understood by the match plugin running on the game server.
const (
	CmdEndMatch    = "get5_endmatch"
	CmdPause       = "sm_pause"
	CmdUnpause     = "sm_unpause"
	CmdStatus      = "get5_web_avaliable"
	CmdForceMapDef = "map de_dust2"
)

func CmdLoadMatchURL(url string) string {
	return "get5_loadmatch_url " + url
}

func CmdWebAPIKey(key string) string {
	return "get5_web_api_key " + key
}

func CmdAddPlayer(auth, team string) string {
	return fmt.Sprintf("get5_addplayer %s %s", auth, team)
}

func CmdListBackups(matchID uint) string {
	return fmt.Sprintf("get5_listbackups %d", matchID)
}

func CmdLoadBackup(file string) string {
	return "get5_loadbackup " + file
}

func CmdCheckAuths(on bool) string {
	if on {
		return "get5_check_auths 1"
	}
	return "get5_check_auths 0"
}

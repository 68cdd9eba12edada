// models/match_config.go - the configuration document the game server consumes
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PlayerEntry is one roster entry in a match config.
type PlayerEntry struct {
	Auth string
	Name string
}

// PlayerList serializes as a JSON object of auth -> preferred name, keeping
// insertion order so repeated builds of the same match produce identical
// bytes.
type PlayerList []PlayerEntry

func (pl PlayerList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pl {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Auth)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the auth -> name object back, keeping document order.
func (pl *PlayerList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("players: expected object, got %v", tok)
	}

	*pl = (*pl)[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		auth, _ := keyTok.(string)
		var name string
		if err := dec.Decode(&name); err != nil {
			return err
		}
		*pl = append(*pl, PlayerEntry{Auth: auth, Name: name})
	}
	_, err = dec.Token()
	return err
}

type TeamConfig struct {
	Name        string     `json:"name,omitempty"`
	Tag         string     `json:"tag,omitempty"`
	Flag        string     `json:"flag,omitempty"`
	Logo        string     `json:"logo,omitempty"`
	MatchText   string     `json:"matchtext,omitempty"`
	SeriesScore int        `json:"series_score,omitempty"`
	Players     PlayerList `json:"players"`
}

type SpectatorConfig struct {
	Players []string `json:"players"`
}

// MatchConfig is the document served to the game server over HTTP. Exactly
// one of MapsToWin / BO2Series is set, depending on the series format.
type MatchConfig struct {
	MatchID              string            `json:"matchid"`
	MatchTitle           string            `json:"match_title"`
	SideType             string            `json:"side_type"`
	VetoFirst            string            `json:"veto_first,omitempty"`
	SkipVeto             bool              `json:"skip_veto"`
	BO2Series            bool              `json:"bo2_series,omitempty"`
	MapsToWin            int               `json:"maps_to_win,omitempty"`
	MinPlayersToReady    int               `json:"min_players_to_ready"`
	MinSpectatorsToReady int               `json:"min_spectators_to_ready"`
	Team1                *TeamConfig       `json:"team1,omitempty"`
	Team2                *TeamConfig       `json:"team2,omitempty"`
	Cvars                map[string]string `json:"cvars"`
	Spectators           *SpectatorConfig  `json:"spectators,omitempty"`
	Maplist              []string          `json:"maplist,omitempty"`
}

func buildTeamConfig(team *Team, matchText string, seriesScore int) *TeamConfig {
	if team == nil {
		return nil
	}
	tc := &TeamConfig{
		Name:        team.Name,
		Tag:         team.Tag,
		Flag:        strings.ToUpper(team.Flag),
		Logo:        team.Logo,
		MatchText:   matchText,
		SeriesScore: seriesScore,
		Players:     PlayerList{},
	}
	for _, a := range team.SortedAuths() {
		tc.Players = append(tc.Players, PlayerEntry{Auth: a.Auth, Name: a.Name})
	}
	return tc
}

// BuildMatchConfig assembles the serializable match description. It is a
// pure function of its arguments: calling it twice without touching the
// match yields identical output. webAPIURL is the callback base the server
// reports results to; spectators combines the deployment's permanent
// spectator list with the match's own.
func BuildMatchConfig(m *Match, team1, team2 *Team, spectators []string, webAPIURL string) *MatchConfig {
	cfg := &MatchConfig{
		MatchID:           strconv.FormatUint(uint64(m.ID), 10),
		MatchTitle:        m.Title,
		SideType:          m.SideType,
		VetoFirst:         m.VetoFirst,
		SkipVeto:          m.SkipVeto,
		MinPlayersToReady: m.MinPlayerReady,
		Team1:             buildTeamConfig(team1, m.Team1String, m.Team1SeriesScore),
		Team2:             buildTeamConfig(team2, m.Team2String, m.Team2SeriesScore),
		Maplist:           m.Mappool(),
	}

	// A bo2 has no win threshold: both maps always count.
	if m.MaxMaps == 2 {
		cfg.BO2Series = true
	} else {
		cfg.MapsToWin = m.MapsToWin()
	}

	checkAuths := "0"
	if m.EnforceTeams {
		checkAuths = "1"
	}
	cfg.Cvars = map[string]string{
		"get5_web_api_url": webAPIURL,
		"get5_check_auths": checkAuths,
	}

	// Omit the block entirely when nobody spectates.
	if len(spectators) > 0 {
		cfg.Spectators = &SpectatorConfig{Players: spectators}
	}

	return cfg
}

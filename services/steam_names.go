// services/steam_names.go - cached persona name lookups
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
)

// Persona names barely change; a day of staleness is fine and keeps us
// well under the Steam API rate limits.
const nameCacheTTL = 24 * time.Hour

var (
	nameCache  = cache.New(nameCacheTTL, time.Hour)
	httpClient = &http.Client{Timeout: 5 * time.Second}
)

type playerSummariesResponse struct {
	Response struct {
		Players []struct {
			PersonaName string `json:"personaname"`
		} `json:"players"`
	} `json:"response"`
}

// GetSteamName resolves a steam64 to its persona name through a
// read-through cache. Returns "" when the account cannot be resolved; the
// caller falls back to whatever name it has stored.
func GetSteamName(steam64 string) string {
	if cached, found := nameCache.Get(steam64); found {
		return cached.(string)
	}

	apiKey := os.Getenv("STEAM_API_KEY")
	if apiKey == "" {
		return ""
	}

	endpoint := fmt.Sprintf(
		"https://api.steampowered.com/ISteamUser/GetPlayerSummaries/v0002/?key=%s&steamids=%s",
		url.QueryEscape(apiKey), url.QueryEscape(steam64))

	resp, err := httpClient.Get(endpoint)
	if err != nil {
		log.Printf("steam name lookup failed for %s: %v", steam64, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var parsed playerSummariesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ""
	}
	if len(parsed.Response.Players) == 0 {
		return ""
	}

	name := parsed.Response.Players[0].PersonaName
	nameCache.Set(steam64, name, cache.DefaultExpiration)
	return name
}

// cmd/team-importer - bulk loads teams and rosters from a JSON file
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"matchpanel/database"
	"matchpanel/models"

	"github.com/joho/godotenv"
)

type JSONTeam struct {
	Owner   string `json:"owner_steam_id"`
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	Flag    string `json:"flag"`
	Logo    string `json:"logo"`
	Public  bool   `json:"public"`
	Players []struct {
		Auth string `json:"auth"`
		Name string `json:"name"`
	} `json:"players"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	jsonPath := "./teams.json"
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		log.Fatal("Failed to read JSON file:", err)
	}

	var teams []JSONTeam
	if err := json.Unmarshal(data, &teams); err != nil {
		log.Fatal("Failed to parse JSON:", err)
	}

	database.InitDB()
	db := database.GetDB()

	fmt.Printf("Found %d teams\n\n", len(teams))

	imported := 0
	for _, jt := range teams {
		if strings.TrimSpace(jt.Name) == "" {
			log.Printf("Skipping team with empty name (owner %s)", jt.Owner)
			continue
		}

		var owner models.User
		if err := db.Where("steam_id = ?", jt.Owner).First(&owner).Error; err != nil {
			log.Printf("Skipping %s: no account for steam id %s", jt.Name, jt.Owner)
			continue
		}

		if len(jt.Players) > models.MaxPlayers {
			log.Printf("Skipping %s: roster larger than %d players", jt.Name, models.MaxPlayers)
			continue
		}

		team := models.Team{
			UserID:     owner.ID,
			Name:       jt.Name,
			Tag:        jt.Tag,
			Flag:       strings.ToUpper(jt.Flag),
			Logo:       jt.Logo,
			PublicTeam: jt.Public,
		}
		for i, p := range jt.Players {
			if strings.TrimSpace(p.Auth) == "" {
				continue
			}
			team.Auths = append(team.Auths, models.TeamAuth{
				Slot: i,
				Auth: strings.TrimSpace(p.Auth),
				Name: p.Name,
			})
		}

		if err := db.Create(&team).Error; err != nil {
			log.Printf("Error inserting %s: %v", jt.Name, err)
			continue
		}
		fmt.Printf("Imported %s (%d players)\n", team.Name, len(team.Auths))
		imported++
	}

	fmt.Printf("\n✓ Imported %d of %d teams\n", imported, len(teams))

	var count int64
	db.Model(&models.Team{}).Count(&count)
	fmt.Printf("✓ Total teams in database: %d\n", count)
}

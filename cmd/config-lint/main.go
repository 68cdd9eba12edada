// cmd/config-lint - sanity checks exported match config JSON files
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"matchpanel/models"
)

func main() {
	pattern := "./configs/*.json"
	if len(os.Args) > 1 {
		pattern = os.Args[1]
	}

	files, err := filepath.Glob(pattern)
	if err != nil {
		fmt.Println("error: bad pattern:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("no config files match", pattern)
		return
	}

	exitCode := 0
	for _, f := range files {
		if problems := lintFile(f); len(problems) > 0 {
			exitCode = 1
			for _, p := range problems {
				fmt.Printf("%s: %s\n", f, p)
			}
		} else {
			fmt.Printf("%s: ok\n", f)
		}
	}
	os.Exit(exitCode)
}

func lintFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("read error: %v", err)}
	}

	var cfg models.MatchConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return []string{fmt.Sprintf("invalid JSON: %v", err)}
	}

	var problems []string
	if cfg.MatchID == "" {
		problems = append(problems, "missing matchid")
	}
	if cfg.Team1 == nil || cfg.Team2 == nil {
		problems = append(problems, "both team blocks are required")
	}
	if cfg.MapsToWin == 0 && !cfg.BO2Series {
		problems = append(problems, "neither maps_to_win nor bo2_series is set")
	}
	if cfg.MapsToWin != 0 && cfg.BO2Series {
		problems = append(problems, "maps_to_win and bo2_series are mutually exclusive")
	}
	if !cfg.SkipVeto && len(cfg.Maplist) == 0 {
		problems = append(problems, "veto enabled but maplist is empty")
	}
	if cfg.Cvars["get5_web_api_url"] == "" {
		problems = append(problems, "missing get5_web_api_url cvar")
	}
	switch cfg.SideType {
	case models.SideTypeStandard, models.SideTypeNeverKnife, models.SideTypeAlwaysKnife:
	default:
		problems = append(problems, fmt.Sprintf("unknown side_type %q", cfg.SideType))
	}
	return problems
}

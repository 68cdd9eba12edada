// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"matchpanel/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := Migrate(db); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes(db)

	log.Println("✅ All migrations completed successfully")
}

// Migrate applies the schema for all panel models on the given connection.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamAuth{},
		&models.Season{},
		&models.GameServer{},
		&models.Match{},
		&models.MatchSpectator{},
		&models.MapStats{},
		&models.PlayerStats{},
		&models.Veto{},
		&models.MatchAudit{},
	)
}

func createIndexes(db *gorm.DB) {
	log.Println("Creating indexes...")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_matches_server ON matches(server_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_matches_season ON matches(season_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_matches_cancelled ON matches(cancelled)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_matches_user ON matches(user_id)")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_player_stats_steam ON player_stats(steam_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_player_stats_match ON player_stats(match_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_player_stats_map ON player_stats(map_id)")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_map_stats_match ON map_stats(match_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_vetoes_match ON vetoes(match_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_team_auths_team ON team_auths(team_id)")

	// One live match per server: partial index backs the in-use lock so two
	// concurrent creations cannot both reserve the same server.
	db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_active_server
		ON matches(server_id) WHERE cancelled = false AND end_time IS NULL`)

	log.Println("✅ Indexes created successfully")
}

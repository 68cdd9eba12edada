package services

import (
	"fmt"
	"testing"

	"matchpanel/database"
	"matchpanel/models"
	"matchpanel/rcon"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeConsole records commands instead of dialing a game server.
type fakeConsole struct {
	commands []string
	response string
	err      error
}

func (f *fakeConsole) Execute(command string) (string, error) {
	f.commands = append(f.commands, command)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func fakeFactory(f *fakeConsole) ConsoleFactory {
	return func(server *models.GameServer) rcon.Console { return f }
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func makeUser(t *testing.T, db *gorm.DB, steamID string, admin, superAdmin bool) *models.User {
	t.Helper()
	user := &models.User{
		SteamID:    steamID,
		Username:   "user-" + steamID,
		Name:       "User " + steamID,
		Admin:      admin,
		SuperAdmin: superAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}
	return user
}

func makeTeam(t *testing.T, db *gorm.DB, owner *models.User, name string, auths ...string) *models.Team {
	t.Helper()
	team := &models.Team{UserID: owner.ID, Name: name, Tag: name[:3], Flag: "SE"}
	for i, auth := range auths {
		team.Auths = append(team.Auths, models.TeamAuth{Slot: i, Auth: auth})
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatal(err)
	}
	return team
}

func makeServer(t *testing.T, db *gorm.DB, owner *models.User) *models.GameServer {
	t.Helper()
	server := &models.GameServer{
		UserID:      owner.ID,
		DisplayName: "Test Server",
		IPString:    "192.0.2.10",
		Port:        27015,
	}
	if err := db.Create(server).Error; err != nil {
		t.Fatal(err)
	}
	return server
}

func defaultParams(team1, team2 *models.Team, server *models.GameServer) CreateMatchParams {
	return CreateMatchParams{
		Team1ID:     team1.ID,
		Team2ID:     team2.ID,
		ServerID:    server.ID,
		SeriesType:  "bo3",
		SideType:    models.SideTypeStandard,
		VetoMappool: []string{"de_dust2", "de_mirage", "de_inferno"},
	}
}

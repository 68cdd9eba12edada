package services

import (
	"errors"
	"testing"

	"matchpanel/models"
)

func TestCreateMatch(t *testing.T) {
	db := newTestDB(t)
	console := &fakeConsole{}
	svc := NewMatchService(db).WithConsole(fakeFactory(console))

	owner := makeUser(t, db, "76561198000000100", false, false)
	team1 := makeTeam(t, db, owner, "Alpha", "76561198000000001")
	team2 := makeTeam(t, db, owner, "Bravo", "76561198000000002")
	server := makeServer(t, db, owner)

	match, err := svc.Create(owner, defaultParams(team1, team2, server))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if match.Status() != models.MatchPending {
		t.Errorf("new match should be pending, got %s", match.Status())
	}
	if len(match.APIKey) != 24 {
		t.Errorf("expected 24 character api key, got %d", len(match.APIKey))
	}
	if match.MaxMaps != 3 {
		t.Errorf("bo3 should set 3 max maps, got %d", match.MaxMaps)
	}
	if match.MinPlayerReady != 5 {
		t.Errorf("min players to ready should default to 5, got %d", match.MinPlayerReady)
	}

	var reserved models.GameServer
	db.First(&reserved, server.ID)
	if !reserved.InUse {
		t.Error("creating a match should reserve the server")
	}
}

func TestCreateMatchValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewMatchService(db).WithConsole(fakeFactory(&fakeConsole{}))

	owner := makeUser(t, db, "76561198000000100", false, false)
	team1 := makeTeam(t, db, owner, "Alpha")
	team2 := makeTeam(t, db, owner, "Bravo")
	server := makeServer(t, db, owner)

	p := defaultParams(team1, team2, server)
	p.SeriesType = "bo9"
	if _, err := svc.Create(owner, p); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown series type should fail validation, got %v", err)
	}

	p = defaultParams(team1, team1, server)
	if _, err := svc.Create(owner, p); !errors.Is(err, ErrValidation) {
		t.Errorf("equal teams should fail validation, got %v", err)
	}

	p = defaultParams(team1, team2, server)
	p.VetoMappool = []string{"de_dust2"}
	if _, err := svc.Create(owner, p); !errors.Is(err, ErrValidation) {
		t.Errorf("too small mappool should fail validation, got %v", err)
	}

	p = defaultParams(team1, team2, server)
	p.SeriesType = "bo1-preset"
	p.VetoMappool = []string{"de_dust2", "de_mirage"}
	if _, err := svc.Create(owner, p); !errors.Is(err, ErrValidation) {
		t.Errorf("preset bo1 with two maps should fail validation, got %v", err)
	}

	p = defaultParams(team1, team2, server)
	p.SideType = "coinflip"
	if _, err := svc.Create(owner, p); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown side type should fail validation, got %v", err)
	}

	p = defaultParams(team1, team2, server)
	p.Team2ID = 9999
	if _, err := svc.Create(owner, p); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing team should be not found, got %v", err)
	}
}

func TestCreateMatchServerRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewMatchService(db).WithConsole(fakeFactory(&fakeConsole{}))

	owner := makeUser(t, db, "76561198000000100", false, false)
	other := makeUser(t, db, "76561198000000101", false, false)
	team1 := makeTeam(t, db, owner, "Alpha")
	team2 := makeTeam(t, db, owner, "Bravo")
	server := makeServer(t, db, other)

	// Someone else's private server.
	if _, err := svc.Create(owner, defaultParams(team1, team2, server)); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("using another user's private server should be denied, got %v", err)
	}

	db.Model(server).Update("public_server", true)
	server.PublicServer = true
	if _, err := svc.Create(owner, defaultParams(team1, team2, server)); err != nil {
		t.Fatalf("public server should be usable: %v", err)
	}

	// Server now carries an active match.
	if _, err := svc.Create(owner, defaultParams(team1, team2, server)); !errors.Is(err, ErrConflict) {
		t.Errorf("second match on a busy server should conflict, got %v", err)
	}
}

func TestCreateMatchQuota(t *testing.T) {
	db := newTestDB(t)
	svc := NewMatchService(db).WithConsole(fakeFactory(&fakeConsole{}))
	t.Setenv("USER_MAX_MATCHES", "1")

	owner := makeUser(t, db, "76561198000000100", false, false)
	admin := makeUser(t, db, "76561198000000102", true, false)
	team1 := makeTeam(t, db, owner, "Alpha")
	team2 := makeTeam(t, db, owner, "Bravo")
	server1 := makeServer(t, db, owner)
	server2 := makeServer(t, db, owner)
	server3 := makeServer(t, db, admin)

	if _, err := svc.Create(owner, defaultParams(team1, team2, server1)); err != nil {
		t.Fatalf("first match should pass: %v", err)
	}
	if _, err := svc.Create(owner, defaultParams(team1, team2, server2)); !errors.Is(err, ErrConflict) {
		t.Errorf("second match should exceed the quota, got %v", err)
	}

	// Admins bypass the quota.
	if _, err := svc.Create(admin, defaultParams(team1, team2, server3)); err != nil {
		t.Errorf("admin should bypass the quota: %v", err)
	}
}

func TestCancelMatch(t *testing.T) {
	db := newTestDB(t)
	console := &fakeConsole{}
	svc := NewMatchService(db).WithConsole(fakeFactory(console))

	owner := makeUser(t, db, "76561198000000100", false, false)
	stranger := makeUser(t, db, "76561198000000103", false, false)
	team1 := makeTeam(t, db, owner, "Alpha")
	team2 := makeTeam(t, db, owner, "Bravo")
	server := makeServer(t, db, owner)

	match, err := svc.Create(owner, defaultParams(team1, team2, server))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Cancel(stranger, match); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("stranger cancelling should be denied, got %v", err)
	}

	if _, err := svc.Cancel(owner, match); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}

	var stored models.Match
	db.First(&stored, match.ID)
	if stored.Status() != models.MatchCancelled {
		t.Errorf("expected cancelled state, got %s", stored.Status())
	}

	var freed models.GameServer
	db.First(&freed, server.ID)
	if freed.InUse {
		t.Error("cancelling should release the server")
	}

	// Terminal, so a second cancel is rejected.
	if _, err := svc.Cancel(owner, &stored); !errors.Is(err, ErrInvalidState) {
		t.Errorf("cancelling a cancelled match should fail, got %v", err)
	}
}

func TestCancelCommitsDespiteServerFailure(t *testing.T) {
	db := newTestDB(t)
	console := &fakeConsole{err: errors.New("connection refused")}
	svc := NewMatchService(db).WithConsole(fakeFactory(console))

	owner := makeUser(t, db, "76561198000000100", false, false)
	team1 := makeTeam(t, db, owner, "Alpha")
	team2 := makeTeam(t, db, owner, "Bravo")
	server := makeServer(t, db, owner)

	match, err := svc.Create(owner, defaultParams(team1, team2, server))
	if err != nil {
		t.Fatal(err)
	}

	warning, err := svc.Cancel(owner, match)
	if err != nil {
		t.Fatalf("cancel should commit even when the server is unreachable: %v", err)
	}
	if warning == "" {
		t.Error("unreachable server should surface as a warning")
	}

	var stored models.Match
	db.First(&stored, match.ID)
	if !stored.Cancelled {
		t.Error("cancellation should be persisted")
	}
}

func TestForfeitMatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewMatchService(db).WithConsole(fakeFactory(&fakeConsole{}))

	owner := makeUser(t, db, "76561198000000100", false, false)
	super := makeUser(t, db, "76561198000000104", false, true)
	team1 := makeTeam(t, db, owner, "Alpha")
	team2 := makeTeam(t, db, owner, "Bravo")
	server := makeServer(t, db, owner)

	match, err := svc.Create(owner, defaultParams(team1, team2, server))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Forfeit(owner, match, 1); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("non super admin forfeits should be denied, got %v", err)
	}
	if _, err := svc.Forfeit(super, match, 3); !errors.Is(err, ErrValidation) {
		t.Errorf("winning side 3 should fail validation, got %v", err)
	}

	if _, err := svc.Forfeit(super, match, 2); err != nil {
		t.Fatalf("forfeit failed: %v", err)
	}

	var stored models.Match
	db.First(&stored, match.ID)
	if stored.Status() != models.MatchFinished {
		t.Errorf("forfeited match should be finished, got %s", stored.Status())
	}
	if !stored.Forfeit || stored.Winner == nil || *stored.Winner != team2.ID {
		t.Error("forfeit should record team2 as winner")
	}
	if stored.Team1SeriesScore != 0 || stored.Team2SeriesScore != 1 {
		t.Errorf("expected 0-1 series score, got %d-%d", stored.Team1SeriesScore, stored.Team2SeriesScore)
	}

	var maps []models.MapStats
	db.Where("match_id = ?", match.ID).Find(&maps)
	if len(maps) != 1 {
		t.Fatalf("forfeit should synthesize exactly one map, got %d", len(maps))
	}
	if maps[0].Team1Score != 0 || maps[0].Team2Score != 16 {
		t.Errorf("expected a 0-16 map, got %d-%d", maps[0].Team1Score, maps[0].Team2Score)
	}

	var freed models.GameServer
	db.First(&freed, server.ID)
	if freed.InUse {
		t.Error("forfeit should release the server")
	}
}

func TestCanView(t *testing.T) {
	db := newTestDB(t)
	svc := NewMatchService(db).WithConsole(fakeFactory(&fakeConsole{}))

	owner := makeUser(t, db, "76561198000000100", false, false)
	player := makeUser(t, db, "76561198000000001", false, false)
	stranger := makeUser(t, db, "76561198000000105", false, false)
	admin := makeUser(t, db, "76561198000000106", true, false)
	team1 := makeTeam(t, db, owner, "Alpha", "76561198000000001")
	team2 := makeTeam(t, db, owner, "Bravo", "76561198000000002")
	server := makeServer(t, db, owner)

	p := defaultParams(team1, team2, server)
	p.PrivateMatch = true
	match, err := svc.Create(owner, p)
	if err != nil {
		t.Fatal(err)
	}

	if !svc.CanView(owner, match) {
		t.Error("owner should view their private match")
	}
	if !svc.CanView(player, match) {
		t.Error("roster player should view a private match")
	}
	if svc.CanView(stranger, match) {
		t.Error("stranger should not view a private match")
	}
	if svc.CanView(nil, match) {
		t.Error("anonymous should not view a private match")
	}
	if !svc.CanView(admin, match) {
		t.Error("admin should view private matches by default")
	}

	t.Setenv("ADMINS_ACCESS_ALL_MATCHES", "false")
	if svc.CanView(admin, match) {
		t.Error("admin access should respect the deployment toggle")
	}

	match.PrivateMatch = false
	if !svc.CanView(nil, match) {
		t.Error("anyone should view a public match")
	}
}

func TestRecordVetoAndRemainingMaps(t *testing.T) {
	db := newTestDB(t)
	svc := NewMatchService(db).WithConsole(fakeFactory(&fakeConsole{}))

	owner := makeUser(t, db, "76561198000000100", false, false)
	team1 := makeTeam(t, db, owner, "Alpha")
	team2 := makeTeam(t, db, owner, "Bravo")
	server := makeServer(t, db, owner)

	match, err := svc.Create(owner, defaultParams(team1, team2, server))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.RecordVeto(match.ID, "Alpha", "de_dust2", "ban"); !errors.Is(err, ErrValidation) {
		t.Errorf("action other than pick/veto should fail, got %v", err)
	}

	if _, err := svc.RecordVeto(match.ID, "Alpha", "de_dust2", "veto"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordVeto(match.ID, "Bravo", "de_mirage", "pick"); err != nil {
		t.Fatal(err)
	}

	remaining, err := svc.RemainingMaps(match)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0] != "de_inferno" {
		t.Errorf("expected de_inferno remaining, got %v", remaining)
	}
}

func TestDispatch(t *testing.T) {
	db := newTestDB(t)
	console := &fakeConsole{}
	svc := NewMatchService(db).WithConsole(fakeFactory(console))

	owner := makeUser(t, db, "76561198000000100", false, false)
	team1 := makeTeam(t, db, owner, "Alpha")
	team2 := makeTeam(t, db, owner, "Bravo")
	server := makeServer(t, db, owner)

	match, err := svc.Create(owner, defaultParams(team1, team2, server))
	if err != nil {
		t.Fatal(err)
	}
	console.commands = nil

	if err := svc.Dispatch(match); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(console.commands) != 3 {
		t.Fatalf("expected loadmatch, api key and map change commands, got %v", console.commands)
	}

	// The plugin answers the load command with output only on failure.
	console.response = "Failed to load match config"
	if err := svc.Dispatch(match); err == nil {
		t.Error("a chatty load response should be treated as failure")
	}
}

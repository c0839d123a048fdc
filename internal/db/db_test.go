package db

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		database.conn.Exec("DELETE FROM tap_events")
		database.conn.Exec("DELETE FROM player_badges")
		database.conn.Exec("DELETE FROM games")
		database.conn.Exec("DELETE FROM players")
		database.Close()
	})
	return database
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	if err := database.Ping(); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	database := getTestDB(t)

	tables := []string{"players", "games", "tap_events", "player_badges"}
	for _, table := range tables {
		var exists bool
		err := database.conn.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
		`, table).Scan(&exists)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestMigrate_Twice(t *testing.T) {
	database := getTestDB(t)
	if err := database.Migrate(); err != nil {
		t.Errorf("second Migrate() error: %v", err)
	}
}

func TestUpsertPlayer(t *testing.T) {
	database := getTestDB(t)

	id := "550e8400-e29b-41d4-a716-446655440000"
	if err := database.UpsertPlayer(id, "Alice"); err != nil {
		t.Fatalf("UpsertPlayer() error: %v", err)
	}
	if err := database.UpsertPlayer(id, "Alice Updated"); err != nil {
		t.Fatalf("UpsertPlayer() update error: %v", err)
	}

	p, err := database.GetPlayer(id)
	if err != nil {
		t.Fatalf("GetPlayer() error: %v", err)
	}
	if p.Name != "Alice Updated" {
		t.Errorf("name = %q, want %q", p.Name, "Alice Updated")
	}
}

func TestGetPlayer_NotFound(t *testing.T) {
	database := getTestDB(t)

	_, err := database.GetPlayer("00000000-0000-0000-0000-000000000000")
	if err == nil {
		t.Error("GetPlayer() should return error for nonexistent player")
	}
}

func TestCreateAndFinishGame(t *testing.T) {
	database := getTestDB(t)

	playerID := "550e8400-e29b-41d4-a716-446655440001"
	database.UpsertPlayer(playerID, "Player")

	gameID := uuid.New().String()
	if err := database.CreateGame(gameID, "ABCD", playerID); err != nil {
		t.Fatalf("CreateGame() error: %v", err)
	}

	if err := database.FinishGame(gameID, 420, 3, 21); err != nil {
		t.Fatalf("FinishGame() error: %v", err)
	}

	g, err := database.GetGame(gameID)
	if err != nil {
		t.Fatalf("GetGame() error: %v", err)
	}
	if g.EndedAt == nil {
		t.Error("ended_at should be set after FinishGame()")
	}
	if g.FinalScore != 420 || g.FinalLevel != 3 || g.MaxCombo != 21 {
		t.Errorf("game = %+v, want score 420 level 3 combo 21", g)
	}
	if g.SessionCode != "ABCD" {
		t.Errorf("session code = %q, want ABCD", g.SessionCode)
	}
}

func TestRecordTap(t *testing.T) {
	database := getTestDB(t)

	playerID := "550e8400-e29b-41d4-a716-446655440002"
	database.UpsertPlayer(playerID, "Player")
	gameID := uuid.New().String()
	database.CreateGame(gameID, "EFGH", playerID)

	err := database.RecordTap(TapEvent{
		GameID:     gameID,
		TargetID:   1,
		Points:     10,
		Combo:      1,
		Level:      1,
		ReactionMs: 640,
		TappedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordTap() error: %v", err)
	}
}

func TestBatchRecordTaps(t *testing.T) {
	database := getTestDB(t)

	playerID := "550e8400-e29b-41d4-a716-446655440003"
	database.UpsertPlayer(playerID, "Player")
	gameID := uuid.New().String()
	database.CreateGame(gameID, "IJKL", playerID)

	now := time.Now()
	events := []TapEvent{
		{GameID: gameID, TargetID: 1, Points: 10, Combo: 1, Level: 1, ReactionMs: 500, TappedAt: now},
		{GameID: gameID, TargetID: 2, Points: 12, Combo: 2, Level: 1, ReactionMs: 450, TappedAt: now},
		{GameID: gameID, TargetID: 4, Points: 14, Combo: 3, Level: 1, ReactionMs: 700, TappedAt: now},
	}

	if err := database.BatchRecordTaps(events); err != nil {
		t.Fatalf("BatchRecordTaps() error: %v", err)
	}

	var count int
	database.conn.QueryRow("SELECT COUNT(*) FROM tap_events WHERE game_id = $1", gameID).Scan(&count)
	if count != 3 {
		t.Errorf("tap count = %d, want 3", count)
	}
}

func TestAwardBadges(t *testing.T) {
	database := getTestDB(t)

	playerID := "550e8400-e29b-41d4-a716-446655440004"
	database.UpsertPlayer(playerID, "Player")
	gameID := uuid.New().String()
	database.CreateGame(gameID, "MNOP", playerID)

	if err := database.AwardBadges(playerID, gameID, []string{"hot_streak", "four_digits"}); err != nil {
		t.Fatalf("AwardBadges() error: %v", err)
	}
	// Awarding again is a no-op.
	if err := database.AwardBadges(playerID, gameID, []string{"hot_streak"}); err != nil {
		t.Fatalf("AwardBadges() repeat error: %v", err)
	}

	badges, err := database.GetPlayerBadges(playerID)
	if err != nil {
		t.Fatalf("GetPlayerBadges() error: %v", err)
	}
	if len(badges) != 2 {
		t.Errorf("badges = %d, want 2", len(badges))
	}
}

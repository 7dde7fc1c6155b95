// Package storage provides SQLite-based persistence for tournament results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
//
// The store is an audit log: live match state never touches the database.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/minigame-arena/internal/multiplayer"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Tournament is one stored match between two players.
type Tournament struct {
	ID          int64            `json:"-"`
	MatchID     string           `json:"matchId"`
	Player1ID   string           `json:"player1Id"`
	Player1Name string           `json:"player1Name"`
	Player2ID   string           `json:"player2Id"`
	Player2Name string           `json:"player2Name"`
	Score1      int              `json:"score1"`
	Score2      int              `json:"score2"`
	WinnerID    string           `json:"winnerId,omitempty"` // Empty on draw or error
	EndReason   string           `json:"endReason"`          // completed, rage-quit, disconnect, error
	GamesPlayed int              `json:"gamesPlayed"`
	StartedAt   time.Time        `json:"startedAt"`
	EndedAt     time.Time        `json:"endedAt"`
	Games       []TournamentGame `json:"games,omitempty"` // Only loaded by TournamentByID
}

// WinnerName returns the winner's display name, or "" on draw.
func (t Tournament) WinnerName() string {
	switch t.WinnerID {
	case "":
		return ""
	case t.Player1ID:
		return t.Player1Name
	case t.Player2ID:
		return t.Player2Name
	}
	return ""
}

// Duration is the wall time between start and end.
func (t Tournament) Duration() time.Duration {
	return t.EndedAt.Sub(t.StartedAt)
}

// TournamentGame is one finished game inside a tournament.
type TournamentGame struct {
	Number      int       `json:"number"`
	GameType    string    `json:"gameType"`
	WinnerID    string    `json:"winnerId,omitempty"`
	Draw        bool      `json:"draw"`
	Score1      int       `json:"score1"`
	Score2      int       `json:"score2"`
	SuddenDeath bool      `json:"suddenDeath"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt"`
}

// GameTypeStats aggregates results for one game type.
type GameTypeStats struct {
	GameType    string
	Played      int
	Draws       int
	SuddenDeath int
	LastPlayed  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
// Timestamps are unix milliseconds.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tournaments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			player1_id TEXT NOT NULL,
			player1_name TEXT NOT NULL,
			player2_id TEXT NOT NULL,
			player2_name TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner_id TEXT,
			end_reason TEXT NOT NULL,
			games_played INTEGER NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tournaments_ended ON tournaments(ended_at DESC);
		CREATE INDEX IF NOT EXISTS idx_tournaments_player1 ON tournaments(player1_id);
		CREATE INDEX IF NOT EXISTS idx_tournaments_player2 ON tournaments(player2_id);

		CREATE TABLE IF NOT EXISTS tournament_games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL REFERENCES tournaments(match_id) ON DELETE CASCADE,
			number INTEGER NOT NULL,
			game_type TEXT NOT NULL,
			winner_id TEXT,
			draw INTEGER NOT NULL DEFAULT 0,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			sudden_death INTEGER NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL,
			UNIQUE(match_id, number)
		);
		CREATE INDEX IF NOT EXISTS idx_tournament_games_type ON tournament_games(game_type);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveTournament records a tournament and its games in one transaction.
// Returns the ID of the inserted tournament row.
func (s *Store) SaveTournament(t Tournament) (id int64, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	games := t.GamesPlayed
	if len(t.Games) > games {
		games = len(t.Games)
	}

	res, err := tx.Exec(
		`INSERT INTO tournaments
		 (match_id, player1_id, player1_name, player2_id, player2_name,
		  score1, score2, winner_id, end_reason, games_played, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.MatchID,
		t.Player1ID,
		t.Player1Name,
		t.Player2ID,
		t.Player2Name,
		t.Score1,
		t.Score2,
		nullString(t.WinnerID),
		t.EndReason,
		games,
		t.StartedAt.UnixMilli(),
		t.EndedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save tournament: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, g := range t.Games {
		_, err = tx.Exec(
			`INSERT INTO tournament_games
			 (match_id, number, game_type, winner_id, draw, score1, score2, sudden_death, started_at, ended_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.MatchID,
			g.Number,
			g.GameType,
			nullString(g.WinnerID),
			g.Draw,
			g.Score1,
			g.Score2,
			g.SuddenDeath,
			g.StartedAt.UnixMilli(),
			g.EndedAt.UnixMilli(),
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot save game %d: %w", g.Number, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit tournament: %w", err)
	}
	return id, nil
}

const tournamentColumns = `id, match_id, player1_id, player1_name, player2_id, player2_name,
		        score1, score2, winner_id, end_reason, games_played, started_at, ended_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTournament(row rowScanner) (Tournament, error) {
	var (
		t                 Tournament
		winner            sql.NullString
		started, finished int64
	)
	err := row.Scan(
		&t.ID,
		&t.MatchID,
		&t.Player1ID,
		&t.Player1Name,
		&t.Player2ID,
		&t.Player2Name,
		&t.Score1,
		&t.Score2,
		&winner,
		&t.EndReason,
		&t.GamesPlayed,
		&started,
		&finished,
	)
	if err != nil {
		return Tournament{}, err
	}
	t.WinnerID = winner.String
	t.StartedAt = time.UnixMilli(started).UTC()
	t.EndedAt = time.UnixMilli(finished).UTC()
	return t, nil
}

// TournamentByID retrieves a tournament and its games by match ID.
// Returns nil without error when no such tournament exists.
func (s *Store) TournamentByID(matchID string) (*Tournament, error) {
	row := s.db.QueryRow(
		`SELECT `+tournamentColumns+`
		 FROM tournaments
		 WHERE match_id = ?`,
		matchID,
	)
	t, err := scanTournament(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query tournament: %w", err)
	}

	t.Games, err = s.tournamentGames(matchID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) tournamentGames(matchID string) ([]TournamentGame, error) {
	rows, err := s.db.Query(
		`SELECT number, game_type, winner_id, draw, score1, score2, sudden_death, started_at, ended_at
		 FROM tournament_games
		 WHERE match_id = ?
		 ORDER BY number`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query tournament games: %w", err)
	}
	defer rows.Close()

	var games []TournamentGame
	for rows.Next() {
		var (
			g                 TournamentGame
			winner            sql.NullString
			started, finished int64
		)
		if err := rows.Scan(
			&g.Number,
			&g.GameType,
			&winner,
			&g.Draw,
			&g.Score1,
			&g.Score2,
			&g.SuddenDeath,
			&started,
			&finished,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		g.WinnerID = winner.String
		g.StartedAt = time.UnixMilli(started).UTC()
		g.EndedAt = time.UnixMilli(finished).UTC()
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return games, nil
}

// RecentTournaments retrieves the most recently finished tournaments.
// Games are not loaded.
func (s *Store) RecentTournaments(limit int) ([]Tournament, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+tournamentColumns+`
		 FROM tournaments
		 ORDER BY ended_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query tournaments: %w", err)
	}
	return collectTournaments(rows)
}

// PlayerHistory retrieves tournaments a connection took part in.
func (s *Store) PlayerHistory(playerID string, limit int) ([]Tournament, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+tournamentColumns+`
		 FROM tournaments
		 WHERE player1_id = ? OR player2_id = ?
		 ORDER BY ended_at DESC, id DESC
		 LIMIT ?`,
		playerID, playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query player tournaments: %w", err)
	}
	return collectTournaments(rows)
}

func collectTournaments(rows *sql.Rows) ([]Tournament, error) {
	defer rows.Close()

	var results []Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}

// GameTypeStats aggregates every stored game by type.
func (s *Store) GameTypeStats() (map[string]*GameTypeStats, error) {
	rows, err := s.db.Query(
		`SELECT game_type, COUNT(*), SUM(draw), SUM(sudden_death), MAX(ended_at)
		 FROM tournament_games
		 GROUP BY game_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game type stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameTypeStats)
	for rows.Next() {
		var (
			st   GameTypeStats
			last int64
		)
		if err := rows.Scan(&st.GameType, &st.Played, &st.Draws, &st.SuddenDeath, &last); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = time.UnixMilli(last).UTC()
		stats[st.GameType] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// This adapter allows the coordinator to save match results without direct storage dependency.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	p1, p2 := data.Players[0], data.Players[1]
	t := Tournament{
		MatchID:     data.MatchID,
		Player1ID:   string(p1.ID),
		Player1Name: p1.Name,
		Player2ID:   string(p2.ID),
		Player2Name: p2.Name,
		Score1:      data.Scores[p1.ID],
		Score2:      data.Scores[p2.ID],
		WinnerID:    string(data.WinnerID),
		EndReason:   data.EndReason,
		GamesPlayed: len(data.Games),
		StartedAt:   data.StartedAt,
		EndedAt:     data.EndedAt,
	}
	for _, g := range data.Games {
		t.Games = append(t.Games, TournamentGame{
			Number:      g.Number,
			GameType:    g.GameType,
			WinnerID:    string(g.WinnerID),
			Draw:        g.Draw,
			Score1:      g.Scores[p1.ID],
			Score2:      g.Scores[p2.ID],
			SuddenDeath: g.SuddenDeath,
			StartedAt:   g.StartedAt,
			EndedAt:     g.EndedAt,
		})
	}
	_, err := s.SaveTournament(t)
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

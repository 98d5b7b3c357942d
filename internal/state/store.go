package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id          TEXT PRIMARY KEY,
	scenario         INTEGER NOT NULL,
	player_id        TEXT NOT NULL,
	capacity         INTEGER NOT NULL,
	statistics_json  TEXT NOT NULL,
	constraints_json TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'running',
	reason           TEXT,
	accepted_total   INTEGER NOT NULL DEFAULT 0,
	reject_count     INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT NOT NULL,
	finished_at      TEXT
);

CREATE TABLE IF NOT EXISTS decision_log (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id            TEXT NOT NULL,
	person_index       INTEGER NOT NULL,
	attributes_json    TEXT NOT NULL,
	decision           TEXT NOT NULL,
	forced             INTEGER NOT NULL DEFAULT 0,
	score              REAL NOT NULL DEFAULT 0,
	reason             TEXT,
	capacity_remaining INTEGER NOT NULL,
	created_at         TEXT NOT NULL,
	FOREIGN KEY (game_id) REFERENCES games(game_id)
);

CREATE INDEX IF NOT EXISTS idx_decision_log_game
	ON decision_log(game_id, person_index);
`

// #endregion schema

// #region store-types

// GameRecord is one row of the games table.
type GameRecord struct {
	GameID          string
	Scenario        int
	PlayerID        string
	Capacity        int
	StatisticsJSON  string
	ConstraintsJSON string
	Status          string
	Reason          string
	AcceptedTotal   int
	RejectCount     int
	CreatedAt       time.Time
	FinishedAt      time.Time
}

// DecisionRecord is one row of the decision_log table.
type DecisionRecord struct {
	GameID            string
	PersonIndex       int
	Attributes        map[string]bool
	Decision          string // "accept" | "reject"
	Forced            bool
	Score             float64
	Reason            string
	CapacityRemaining int
	CreatedAt         time.Time
}

// Store persists games and per-candidate decisions in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-types

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region create-game

// CreateGame records a freshly started game together with the raw
// statistics and constraint payloads, so a captured stream can later be
// replayed against the exact same model.
func (s *Store) CreateGame(rec GameRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO games (game_id, scenario, player_id, capacity, statistics_json, constraints_json, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'running', ?)`,
		rec.GameID, rec.Scenario, rec.PlayerID, rec.Capacity,
		rec.StatisticsJSON, rec.ConstraintsJSON,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// #endregion create-game

// #region log-decision

// LogDecision appends one processed candidate to the decision log.
func (s *Store) LogDecision(rec DecisionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	attrsJSON, err := json.Marshal(rec.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	forced := 0
	if rec.Forced {
		forced = 1
	}
	_, err = s.db.Exec(
		`INSERT INTO decision_log (game_id, person_index, attributes_json, decision, forced, score, reason, capacity_remaining, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.GameID, rec.PersonIndex, string(attrsJSON), rec.Decision,
		forced, rec.Score, nullIfEmpty(rec.Reason), rec.CapacityRemaining,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region finish-game

// FinishGame records the terminal status and final counts for a game.
// Always called, including on abnormal termination.
func (s *Store) FinishGame(gameID, status, reason string, acceptedTotal, rejectCount int) error {
	_, err := s.db.Exec(
		`UPDATE games SET status = ?, reason = ?, accepted_total = ?, reject_count = ?, finished_at = ?
		 WHERE game_id = ?`,
		status, nullIfEmpty(reason), acceptedTotal, rejectCount,
		time.Now().UTC().Format(time.RFC3339Nano), gameID,
	)
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	return nil
}

// #endregion finish-game

// #region get-game

// GetGame retrieves a single game row by id.
func (s *Store) GetGame(gameID string) (GameRecord, error) {
	var rec GameRecord
	var reason, finished sql.NullString
	var createdStr string

	err := s.db.QueryRow(
		`SELECT game_id, scenario, player_id, capacity, statistics_json, constraints_json, status, reason, accepted_total, reject_count, created_at, finished_at
		 FROM games WHERE game_id = ?`, gameID,
	).Scan(&rec.GameID, &rec.Scenario, &rec.PlayerID, &rec.Capacity,
		&rec.StatisticsJSON, &rec.ConstraintsJSON, &rec.Status, &reason,
		&rec.AcceptedTotal, &rec.RejectCount, &createdStr, &finished)
	if err != nil {
		return GameRecord{}, fmt.Errorf("get game %s: %w", gameID, err)
	}

	if reason.Valid {
		rec.Reason = reason.String
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return rec, nil
}

// #endregion get-game

// #region list-games

// ListGames returns the most recently started games.
func (s *Store) ListGames(limit int) ([]GameRecord, error) {
	rows, err := s.db.Query(
		`SELECT game_id, scenario, player_id, capacity, statistics_json, constraints_json, status, reason, accepted_total, reject_count, created_at, finished_at
		 FROM games ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var records []GameRecord
	for rows.Next() {
		var rec GameRecord
		var reason, finished sql.NullString
		var createdStr string
		if err := rows.Scan(&rec.GameID, &rec.Scenario, &rec.PlayerID, &rec.Capacity,
			&rec.StatisticsJSON, &rec.ConstraintsJSON, &rec.Status, &reason,
			&rec.AcceptedTotal, &rec.RejectCount, &createdStr, &finished); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if reason.Valid {
			rec.Reason = reason.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		if finished.Valid {
			rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-games

// #region decisions

// Decisions returns the full decision log for one game in arrival order.
func (s *Store) Decisions(gameID string) ([]DecisionRecord, error) {
	rows, err := s.db.Query(
		`SELECT game_id, person_index, attributes_json, decision, forced, score, reason, capacity_remaining, created_at
		 FROM decision_log WHERE game_id = ? ORDER BY person_index ASC`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var attrsJSON, createdStr string
		var reason sql.NullString
		var forced int
		if err := rows.Scan(&rec.GameID, &rec.PersonIndex, &attrsJSON, &rec.Decision,
			&forced, &rec.Score, &reason, &rec.CapacityRemaining, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if err := json.Unmarshal([]byte(attrsJSON), &rec.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes: %w", err)
		}
		rec.Forced = forced != 0
		if reason.Valid {
			rec.Reason = reason.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion decisions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers

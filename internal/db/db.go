// Package db persists experiment sessions and their trial results in
// SQLite. Writes happen once at session end; the live session log stays in
// memory with the controller.
package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/cogmotion/rotation.report/internal/trial"
)

// DB wraps the session store.
type DB struct {
	*sql.DB
	path string
}

// NewDB opens (creating if needed) the SQLite store at path and runs any
// pending migrations.
func NewDB(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	db := &DB{DB: sqldb, path: path}
	if err := db.MigrateUp(); err != nil {
		sqldb.Close()
		return nil, err
	}
	return db, nil
}

// Session is one experiment run. State is the terminal controller state
// ("completed" or "aborted"), or "running" while live.
type Session struct {
	ID           string     `json:"id"`
	StimulusFile string     `json:"stimulus_file"`
	NRotation    int        `json:"n_rotation"`
	NNoRotation  int        `json:"n_no_rotation"`
	State        string     `json:"state"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
}

// CreateSession records a new session row at session start.
func (db *DB) CreateSession(s *Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (id, stimulus_file, n_rotation, n_no_rotation, state, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.StimulusFile, s.NRotation, s.NNoRotation, s.State, s.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FinishSession stamps the terminal state and end time on a session.
func (db *DB) FinishSession(id, state string, endedAt time.Time) error {
	res, err := db.Exec(`UPDATE sessions SET state = ?, ended_at = ? WHERE id = ?`,
		state, endedAt, id)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no session with id %q", id)
	}
	return nil
}

// RecordResults inserts the session's trial results in completion order.
// The insert is transactional so a partial batch never persists.
func (db *DB) RecordResults(sessionID string, results []trial.Result) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO trial_results (
			session_id, trial_number, stimulus_id, is_mirror, user_response,
			response_time, is_correct, rotation_enabled, disparity, initial_angle
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.Exec(
			sessionID, r.TrialNumber, r.StimulusID, r.IsMirror, r.UserResponse,
			r.ResponseTime, r.IsCorrect, r.RotationEnabled, r.Disparity, r.InitialAngle,
		); err != nil {
			return fmt.Errorf("failed to insert trial %d: %w", r.TrialNumber, err)
		}
	}
	return tx.Commit()
}

// ListSessions returns all sessions, newest first.
func (db *DB) ListSessions() ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, stimulus_file, n_rotation, n_no_rotation, state, started_at, ended_at
		FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.StimulusFile, &s.NRotation, &s.NNoRotation,
			&s.State, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetSession returns one session by ID.
func (db *DB) GetSession(id string) (*Session, error) {
	var s Session
	err := db.QueryRow(`
		SELECT id, stimulus_file, n_rotation, n_no_rotation, state, started_at, ended_at
		FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.StimulusFile, &s.NRotation, &s.NNoRotation,
			&s.State, &s.StartedAt, &s.EndedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no session with id %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &s, nil
}

// SessionResults returns a session's trial results in completion order.
func (db *DB) SessionResults(sessionID string) ([]trial.Result, error) {
	rows, err := db.Query(`
		SELECT trial_number, stimulus_id, is_mirror, user_response, response_time,
		       is_correct, rotation_enabled, disparity, initial_angle
		FROM trial_results WHERE session_id = ? ORDER BY trial_number`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	defer rows.Close()

	var results []trial.Result
	for rows.Next() {
		var r trial.Result
		if err := rows.Scan(&r.TrialNumber, &r.StimulusID, &r.IsMirror, &r.UserResponse,
			&r.ResponseTime, &r.IsCorrect, &r.RotationEnabled, &r.Disparity, &r.InitialAngle); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// AttachAdminRoutes mounts debugging endpoints on the given mux. These are
// served under /debug/ and are meant for localhost or tailnet access only.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	// create a tailSQL instance and point it to our DB
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Sessions DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backupPath := fmt.Sprintf("backup-%d.db", time.Now().Unix())
		if _, err := db.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}
		// close the backup file after sending it and remove it from the
		// filesystem
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}

// Package ledger remembers which external catalog items were already
// promoted to personal exercises, so re-opening the builder reuses the
// existing record instead of creating another copy.
package ledger

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/treino/internal/models"
	_ "modernc.org/sqlite"
)

// Ledger maps a content key of an external exercise to the personal record
// created from it.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite ledger at dir/promotions.db.
func Open(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "promotions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	// One writer; the session serializes promotions anyway.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS promotions (
		key         TEXT PRIMARY KEY,
		exercise_id INTEGER NOT NULL,
		titulo      TEXT NOT NULL,
		musculo     TEXT NOT NULL,
		descricao   TEXT NOT NULL,
		thumbnail   TEXT NOT NULL,
		promoted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating promotions table: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Lookup returns the personal exercise recorded for the external item ext.
func (l *Ledger) Lookup(ext models.Exercise) (models.Exercise, bool, error) {
	var (
		id int64
		ex models.Exercise
	)
	err := l.db.QueryRow(
		`SELECT exercise_id, titulo, musculo, descricao, thumbnail FROM promotions WHERE key = ?`,
		Key(ext),
	).Scan(&id, &ex.Titulo, &ex.Musculo, &ex.Descricao, &ex.Thumbnail)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Exercise{}, false, nil
	}
	if err != nil {
		return models.Exercise{}, false, fmt.Errorf("looking up promotion: %w", err)
	}
	ex.ID = models.Int64(id)
	ex.Source = models.SourcePersonal
	return ex, true, nil
}

// Record stores ex as the personal exercise created from the external item ext.
func (l *Ledger) Record(ext, ex models.Exercise) error {
	if !ex.Persisted() {
		return fmt.Errorf("recording promotion: exercise has no id")
	}
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO promotions (key, exercise_id, titulo, musculo, descricao, thumbnail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		Key(ext), *ex.ID, ex.Titulo, ex.Musculo, ex.Descricao, ex.Thumbnail,
	)
	if err != nil {
		return fmt.Errorf("recording promotion: %w", err)
	}
	return nil
}

// Forget drops every entry pointing at the personal exercise id, e.g. after
// it was deleted on the backend.
func (l *Ledger) Forget(id int64) error {
	if _, err := l.db.Exec(`DELETE FROM promotions WHERE exercise_id = ?`, id); err != nil {
		return fmt.Errorf("forgetting promotion: %w", err)
	}
	return nil
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Key computes the content key of an external exercise: the SHA-256 of its
// clamped fields. Title and muscle are compared case-insensitively.
func Key(ex models.Exercise) string {
	ex = ex.Clamped()
	h := sha256.New()
	for _, f := range []string{
		strings.ToLower(strings.TrimSpace(ex.Titulo)),
		strings.ToLower(strings.TrimSpace(ex.Musculo)),
		strings.TrimSpace(ex.Descricao),
		strings.TrimSpace(ex.Thumbnail),
	} {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

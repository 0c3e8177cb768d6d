package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// QueryRecord is one analysis request, kept for the history endpoint.
type QueryRecord struct {
	AminoAcid   string    `json:"amino_acid"`
	Codon       string    `json:"codon,omitempty"`
	HostSpecies string    `json:"host_species,omitempty"`
	Status      int       `json:"status"`
	DurationMs  float64   `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS queries (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        amino_acid TEXT NOT NULL,
        codon TEXT,
        host_species TEXT,
        status INTEGER NOT NULL,
        duration_ms REAL NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);
    `

	_, err = database.Exec(query)
	return err
}

// Close closes the database.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// SaveQuery records one analysis request.
func SaveQuery(rec QueryRecord) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := database.Exec(`
        INSERT INTO queries (amino_acid, codon, host_species, status, duration_ms, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		rec.AminoAcid, rec.Codon, rec.HostSpecies, rec.Status, rec.DurationMs, rec.CreatedAt)
	return err
}

// LoadHistory returns the most recent analysis requests, newest first.
func LoadHistory(limit int) ([]QueryRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT amino_acid, codon, host_species, status, duration_ms, created_at
        FROM queries
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]QueryRecord, 0)
	for rows.Next() {
		var rec QueryRecord
		var codon, host sql.NullString
		if err := rows.Scan(&rec.AminoAcid, &codon, &host, &rec.Status, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Codon = codon.String
		rec.HostSpecies = host.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/crlszmr/vuln-scanner-sub000/config"
)

const runningValue = "running"

// Store is the durable key/value storage that outlives a single console
// run. It remembers which imports are believed in-flight and the auth
// token, nothing else.
type Store struct {
	DB *sql.DB
}

// Open creates or opens the console database under ~/.vulnconsole.
func Open() (*Store, error) {
	home, err := config.HomeDir()
	if err != nil {
		return nil, err
	}

	return OpenAt(filepath.Join(home, "console.db"))
}

// OpenAt opens the store at an explicit path.
func OpenAt(dbPath string) (*Store, error) {
	create := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		file, err := os.Create(dbPath)
		if err != nil {
			return nil, err
		}
		file.Close()
		create = true
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if create {
		table := `CREATE TABLE session (
			"Key" TEXT NOT NULL PRIMARY KEY,
			"Value" TEXT);`
		if _, err := db.Exec(table); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Get returns the stored value for key, or "" when absent.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.DB.QueryRow(`SELECT Value FROM session WHERE Key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.DB.Exec(`INSERT INTO session ("Key", "Value") VALUES (?, ?)
		ON CONFLICT("Key") DO UPDATE SET "Value" = excluded."Value"`, key, value)
	return err
}

func (s *Store) Delete(key string) error {
	_, err := s.DB.Exec(`DELETE FROM session WHERE Key = ?`, key)
	return err
}

// ImportFlag is the durable flag key for a resource kind.
func ImportFlag(kind string) string {
	return fmt.Sprintf("%s_import_status", kind)
}

// MatchingFlag is the durable flag key for a device matching run.
func MatchingFlag(deviceID string) string {
	return fmt.Sprintf("matching_status_%s", deviceID)
}

// MarkRunning records that the job behind flag is in-flight.
func (s *Store) MarkRunning(flag string) error {
	return s.Set(flag, runningValue)
}

// ClearRunning removes the in-flight flag.
func (s *Store) ClearRunning(flag string) error {
	return s.Delete(flag)
}

// IsRunning reports whether the job behind flag is believed to be
// in-flight. Storage errors read as not running.
func (s *Store) IsRunning(flag string) bool {
	value, err := s.Get(flag)
	if err != nil {
		return false
	}
	return value == runningValue
}

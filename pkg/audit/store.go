package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// saveTimeout bounds a single audit insert.
const saveTimeout = 5 * time.Second

const insertAuditLog = `
INSERT INTO audit_log (system_user_id, event, severity, message, sdata, hostname)
VALUES ($1, $2, $3, $4, $5, $6)`

// Store writes audit events to the audit_log table over its own lib/pq
// connection, independent of the GORM pool serving requests.
type Store struct {
	db       *sql.DB
	hostname string
}

// NewStore opens a two-connection pool for audit inserts.
func NewStore(dbURL string) (*Store, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("audit: database url is required")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	db.SetMaxOpenConns(2)
	return NewStoreWithDB(db), nil
}

func NewStoreWithDB(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{db: db, hostname: hostname}
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// actorID returns the acting system user, or NULL for anonymous events.
func actorID(event Event) sql.NullInt64 {
	a, ok := event.(interface{ ActorID() int })
	if !ok || a.ActorID() == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(a.ActorID()), Valid: true}
}

// Save inserts one event row.
func (s *Store) Save(event Event) error {
	if s.db == nil {
		return nil
	}

	sdata, err := json.Marshal(event.StructuredData())
	if err != nil {
		return fmt.Errorf("audit: encoding structured data: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, insertAuditLog,
		actorID(event),
		event.MessageID(),
		int(event.Severity()),
		event.Message(),
		sdata,
		s.hostname,
	)
	return err
}

package db

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Store handles persistence for all bot entities. It is safe for concurrent
// use; every method runs a single statement or an explicit transaction.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Timestamps are stored as integer unix nanoseconds so insertion order is
// preserved within a second.

func toStamp(t time.Time) int64 {
	return t.UnixNano()
}

func fromStamp(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func fromNullStamp(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromStamp(n.Int64)
	return &t
}

func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	out, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(out)
}

func unmarshalList(raw string) []string {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	if items == nil {
		items = []string{}
	}
	return items
}

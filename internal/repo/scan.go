package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/bet-market-engine/internal/store"
)

// layouts aceitos ao ler timestamps gravados como texto (SQLite)
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// timestamp lê time.Time de drivers que devolvem time.Time, string ou []byte
type timestamp struct {
	t     *time.Time
	valid bool
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.valid = false
		return nil
	case time.Time:
		*ts.t = v.UTC()
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("timestamp: unsupported type %T", src)
	}
	ts.valid = true
	return nil
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t.UTC()
			ts.valid = true
			return nil
		}
	}
	return fmt.Errorf("timestamp: cannot parse %q", s)
}

func scanTime(t *time.Time) *timestamp { return &timestamp{t: t} }

// nullableTime aceita NULL e preenche o ponteiro somente quando há valor
type nullableTime struct {
	dst **time.Time
}

func (n nullableTime) Scan(src any) error {
	if src == nil {
		*n.dst = nil
		return nil
	}
	var t time.Time
	ts := timestamp{t: &t}
	if err := ts.Scan(src); err != nil {
		return err
	}
	*n.dst = &t
	return nil
}

// notFound traduz sql.ErrNoRows em store.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

// ErrInvalidMessage is returned when a message lacks an ID, a locale or its
// "other" form.
var ErrInvalidMessage = errors.New("store: message needs an id, a locale and an other form")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	-- messages holds one row per message id and locale; plural forms follow CLDR categories
	CREATE TABLE IF NOT EXISTS messages (
		message_id TEXT NOT NULL,
		locale TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		zero TEXT NOT NULL DEFAULT '',
		one TEXT NOT NULL DEFAULT '',
		two TEXT NOT NULL DEFAULT '',
		few TEXT NOT NULL DEFAULT '',
		many TEXT NOT NULL DEFAULT '',
		other TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (message_id, locale)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_locale ON messages(locale);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Message is a row from the messages table.
type Message struct {
	ID          string
	Locale      string
	Description string
	Zero        string
	One         string
	Two         string
	Few         string
	Many        string
	Other       string
	UpdatedAt   time.Time
}

// Plural reports whether any form besides Other is set.
func (m Message) Plural() bool {
	return m.Zero != "" || m.One != "" || m.Two != "" || m.Few != "" || m.Many != ""
}

// Forms returns the non-empty forms keyed by CLDR category name.
func (m Message) Forms() map[string]string {
	forms := map[string]string{}
	for name, text := range map[string]string{
		"zero": m.Zero, "one": m.One, "two": m.Two,
		"few": m.Few, "many": m.Many, "other": m.Other,
	} {
		if text != "" {
			forms[name] = text
		}
	}
	return forms
}

// Stats summarises the catalog.
type Stats struct {
	TotalEntries  int
	DistinctIDs   int
	Locales       int
	PluralEntries int
}

// Put inserts or replaces a message. Texts are NFC-normalized.
func (s *Store) Put(ctx context.Context, m Message) error {
	m.ID = strings.TrimSpace(m.ID)
	m.Locale = strings.TrimSpace(m.Locale)
	if m.ID == "" || m.Locale == "" || strings.TrimSpace(m.Other) == "" {
		return ErrInvalidMessage
	}

	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, locale, description, zero, one, two, few, many, other, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(message_id, locale) DO UPDATE SET
			description = excluded.description,
			zero = excluded.zero, one = excluded.one, two = excluded.two,
			few = excluded.few, many = excluded.many, other = excluded.other,
			updated_at = excluded.updated_at`,
		m.ID, m.Locale, m.Description,
		normalizeText(m.Zero), normalizeText(m.One), normalizeText(m.Two),
		normalizeText(m.Few), normalizeText(m.Many), normalizeText(m.Other),
		now, now)
	return err
}

const selectMessage = `SELECT message_id, locale, description, zero, one, two, few, many, other, updated_at FROM messages`

func scanMessage(sc interface{ Scan(...any) error }) (Message, error) {
	var m Message
	err := sc.Scan(&m.ID, &m.Locale, &m.Description, &m.Zero, &m.One, &m.Two, &m.Few, &m.Many, &m.Other, &m.UpdatedAt)
	return m, err
}

// Get returns the message for id in locale.
func (s *Store) Get(ctx context.Context, id, locale string) (Message, bool, error) {
	m, err := scanMessage(s.db.QueryRowContext(ctx,
		selectMessage+` WHERE message_id = ? AND locale = ?`, id, locale))
	if err == sql.ErrNoRows {
		return Message{}, false, nil
	}
	if err != nil {
		return Message{}, false, err
	}
	return m, true, nil
}

// List returns messages ordered by locale and id, optionally filtered by
// locale (pass an empty string to return everything).
func (s *Store) List(ctx context.Context, locale string) ([]Message, error) {
	query := selectMessage
	var args []any
	if locale != "" {
		query += ` WHERE locale = ?`
		args = append(args, locale)
	}
	query += ` ORDER BY locale, message_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Locales returns the distinct locales present in the catalog, sorted.
func (s *Store) Locales(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT locale FROM messages ORDER BY locale`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locales []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		locales = append(locales, l)
	}
	return locales, rows.Err()
}

// Delete removes id in locale, or in every locale when locale is empty.
func (s *Store) Delete(ctx context.Context, id, locale string) (int64, error) {
	query := `DELETE FROM messages WHERE message_id = ?`
	args := []any{id}
	if locale != "" {
		query += ` AND locale = ?`
		args = append(args, locale)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Clear removes all messages.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats returns summary statistics for the catalog.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT message_id),
			COUNT(DISTINCT locale),
			COALESCE(SUM(CASE WHEN zero != '' OR one != '' OR two != '' OR few != '' OR many != '' THEN 1 ELSE 0 END), 0)
		FROM messages`).Scan(
		&stats.TotalEntries,
		&stats.DistinctIDs,
		&stats.Locales,
		&stats.PluralEntries,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText applies Unicode NFC normalization so equal texts compare
// equal. Surrounding whitespace is significant in messages and kept.
func normalizeText(text string) string {
	return norm.NFC.String(text)
}

// levenshtein returns the edit distance between two strings (rune-aware).
// Uses a space-optimized two-row DP implementation.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = min(prev[j], prev[j-1], curr[j-1]) + 1
		}
		prev, curr = curr, prev
	}

	return prev[lb]
}

// similarity returns a score in [0, 1] (1 = identical).
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

// Similar returns message IDs whose similarity to id is at least threshold,
// best match first. It backs "did you mean" hints for unknown IDs.
func (s *Store) Similar(ctx context.Context, id string, threshold float64, limit int) ([]string, error) {
	if threshold <= 0 || limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT message_id FROM messages`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		id    string
		score float64
	}
	var matches []scored
	for rows.Next() {
		var candidate string
		if err := rows.Scan(&candidate); err != nil {
			return nil, err
		}
		if score := similarity(id, candidate); score >= threshold {
			matches = append(matches, scored{candidate, score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].id < matches[j].id
	})

	var ids []string
	for i := 0; i < len(matches) && i < limit; i++ {
		ids = append(ids, matches[i].id)
	}
	return ids, nil
}

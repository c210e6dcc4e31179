package shouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyPhrase = errors.New("shout phrase is empty")
	ErrTooLong     = errors.New("shout phrase exceeds 280 characters")
)

const maxPhraseLen = 280

// Shout is one entry on the community wall.
type Shout struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Phrase    string    `json:"phrase"`
	CreatedAt time.Time `json:"created_at"`
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Post(ctx context.Context, author, phrase string) (*Shout, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil, ErrEmptyPhrase
	}
	if len([]rune(phrase)) > maxPhraseLen {
		return nil, ErrTooLong
	}

	const q = `
		INSERT INTO shouts (author, phrase)
		VALUES ($1, $2)
		RETURNING id, author, phrase, created_at`
	var s Shout
	err := r.db.QueryRowContext(ctx, q, author, phrase).
		Scan(&s.ID, &s.Author, &s.Phrase, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert shout: %w", err)
	}
	return &s, nil
}

func (r *Repo) List(ctx context.Context, limit int) ([]Shout, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const q = `
		SELECT id, author, phrase, created_at
		FROM shouts
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list shouts: %w", err)
	}
	defer rows.Close()

	out := make([]Shout, 0, limit)
	for rows.Next() {
		var s Shout
		if err := rows.Scan(&s.ID, &s.Author, &s.Phrase, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shout: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

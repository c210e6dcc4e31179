package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is the authoritative per-user record. The session cache mirrors it
// for availability; this table is the source of truth.
type Profile struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	GenerationCount    int        `json:"generation_count"`
	IsSubscribed       bool       `json:"is_subscribed"`
	SubscriptionExpiry *int64     `json:"subscription_expiry"`
	LastGenerationDate *time.Time `json:"last_generation_date"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// profiles.id holds the auth provider's opaque uid, which is not UUID
// shaped. Queries must bind it as plain text.
const (
	qEnsure = `
insert into profiles (id, email, updated_at)
values ($1, nullif($2,''), now())
on conflict (id) do update
set
  email = coalesce(excluded.email, profiles.email),
  updated_at = now()
returning id, coalesce(email,''), generation_count, is_subscribed, subscription_expiry, last_generation_date, updated_at;
`

	qFetch = `
select id, coalesce(email,''), generation_count, is_subscribed, subscription_expiry, last_generation_date, updated_at
from profiles
where id = $1;
`

	qSyncCounters = `
insert into profiles (id, email, generation_count, is_subscribed, subscription_expiry, last_generation_date, updated_at)
values ($1, nullif($2,''), $3, $4, $5, $6, now())
on conflict (id) do update
set
  email = coalesce(excluded.email, profiles.email),
  generation_count = excluded.generation_count,
  is_subscribed = excluded.is_subscribed,
  subscription_expiry = excluded.subscription_expiry,
  last_generation_date = excluded.last_generation_date,
  updated_at = now();
`

	qBumpCount = `
insert into profiles (id, generation_count, last_generation_date, updated_at)
values ($1, 1, now(), now())
on conflict (id) do update
set
  generation_count = profiles.generation_count + 1,
  last_generation_date = now(),
  updated_at = now();
`

	qListAll = `
select id, coalesce(email,''), generation_count, is_subscribed, subscription_expiry, last_generation_date, updated_at
from profiles
order by updated_at desc;
`

	qResetCredits = `update profiles set generation_count = 0, updated_at = now() where id = $1;`

	qDelete = `delete from profiles where id = $1;`
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Ensure upserts a profile row for the authenticated user and returns it.
func (r *Repo) Ensure(ctx context.Context, id, email string) (*Profile, error) {
	if id == "" {
		return nil, fmt.Errorf("user id required")
	}

	var p Profile
	err := r.db.QueryRow(ctx, qEnsure, id, email).
		Scan(&p.ID, &p.Email, &p.GenerationCount, &p.IsSubscribed, &p.SubscriptionExpiry, &p.LastGenerationDate, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Fetch returns the profile, or (nil, nil) when no row exists. Callers treat
// a nil profile as "nothing authoritative known".
func (r *Repo) Fetch(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx, qFetch, id).
		Scan(&p.ID, &p.Email, &p.GenerationCount, &p.IsSubscribed, &p.SubscriptionExpiry, &p.LastGenerationDate, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SyncCounters writes the full counter record for a user. Writers always
// write the complete set of fields so that a stale partial update cannot
// resurrect old values.
func (r *Repo) SyncCounters(ctx context.Context, p *Profile) error {
	_, err := r.db.Exec(ctx, qSyncCounters, p.ID, p.Email, p.GenerationCount, p.IsSubscribed, p.SubscriptionExpiry, p.LastGenerationDate)
	return err
}

// BumpGenerationCount spends one generation credit server-side. Unlike
// SyncCounters this is an atomic increment, used by background workers that
// never held the full session record.
func (r *Repo) BumpGenerationCount(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, qBumpCount, id)
	return err
}

// ListAll returns every profile, newest update first. Admin surface only.
func (r *Repo) ListAll(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.Query(ctx, qListAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Profile, 0, 32)
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.GenerationCount, &p.IsSubscribed, &p.SubscriptionExpiry, &p.LastGenerationDate, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ResetCredits zeroes a user's generation counter.
func (r *Repo) ResetCredits(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, qResetCredits, id)
	return err
}

// Delete removes a profile row.
func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, qDelete, id)
	return err
}

package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("project not found")

// projects.id is a database-issued uuid, so id parameters are cast.
// projects.user_id carries the auth provider's opaque uid and stays text.
const (
	qUpdate = `
update projects
set name = $3, prompt = $4, code = $5, updated_at = now()
where id = $1::uuid and user_id = $2
returning id, name, prompt, code, created_at, updated_at, user_id;
`

	qInsert = `
insert into projects (user_id, name, prompt, code)
values ($1, $2, $3, $4)
returning id, name, prompt, code, created_at, updated_at, user_id;
`

	qList = `
select id, name, prompt, code, created_at, updated_at, user_id
from projects
where user_id = $1
order by created_at desc;
`

	qDelete = `delete from projects where id = $1::uuid;`

	qCount = `select count(*) from projects;`

	qDeleteByName = `delete from projects where name = $1;`
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Save updates the project identified by existingID when given, otherwise
// inserts a new record. The whole row is replaced either way; there is no
// partial patch path.
func (r *Repo) Save(ctx context.Context, userID, name, prompt, code, existingID string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	if existingID != "" {
		var p Project
		err := r.db.QueryRow(ctx, qUpdate, existingID, userID, name, prompt, code).
			Scan(&p.ID, &p.Name, &p.Prompt, &p.Code, &p.CreatedAt, &p.UpdatedAt, &p.UserID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return &p, nil
	}

	var p Project
	err := r.db.QueryRow(ctx, qInsert, userID, name, prompt, code).
		Scan(&p.ID, &p.Name, &p.Prompt, &p.Code, &p.CreatedAt, &p.UpdatedAt, &p.UserID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context, userID string) ([]Project, error) {
	rows, err := r.db.Query(ctx, qList, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Prompt, &p.Code, &p.CreatedAt, &p.UpdatedAt, &p.UserID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, qDelete, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// Count returns the total number of projects across all users.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, qCount).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteByName removes every project carrying the given name. Used by the
// nightly junk cleanup for rows created with the default template title.
func (r *Repo) DeleteByName(ctx context.Context, name string) (int64, error) {
	ct, err := r.db.Exec(ctx, qDeleteByName, name)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

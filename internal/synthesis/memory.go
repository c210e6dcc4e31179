package synthesis

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// MemoryRepo persists the self-healing log: every repair records the error
// pattern it saw and the fix that was applied, and later repairs replay the
// most recent entries back into the prompt.
type MemoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

const memoryMapLimit = 20

func (r *MemoryRepo) LogRepair(ctx context.Context, errorPattern, solutionLogic, briefContext string) error {
	const q = `
		INSERT INTO synthesis_memory (error_pattern, solution_logic, brief_context)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, q, errorPattern, solutionLogic, briefContext); err != nil {
		return fmt.Errorf("log repair: %w", err)
	}
	return nil
}

// MemoryMap renders the recent repair history as prompt text. An empty
// history (or an unreadable one) is an empty string, never an error the
// repair path has to care about.
func (r *MemoryRepo) MemoryMap(ctx context.Context) (string, error) {
	const q = `
		SELECT error_pattern, solution_logic
		FROM synthesis_memory
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, memoryMapLimit)
	if err != nil {
		return "", fmt.Errorf("query synthesis memory: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var pattern, solution string
		if err := rows.Scan(&pattern, &solution); err != nil {
			return "", fmt.Errorf("scan synthesis memory row: %w", err)
		}
		fmt.Fprintf(&b, "- ERROR: %s\n  FIX: %s\n", pattern, solution)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate synthesis memory: %w", err)
	}
	return b.String(), nil
}

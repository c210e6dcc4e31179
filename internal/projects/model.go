package projects

import (
	"fmt"
	"strings"
	"time"
)

const (
	// CodeReadyThreshold is the minimum trimmed code length for a project to
	// count as finished. Anything at or below it is an unfinished/placeholder
	// record still being built in the background. The length check is a
	// heuristic, kept as-is: a valid but very terse component would be
	// treated as still building.
	CodeReadyThreshold = 100

	// PlaceholderPrefix marks locally synthesized stand-in projects that were
	// never persisted.
	PlaceholderPrefix = "pending-"
)

// Project binds a brief and prototype code to a user. Prompt holds the brief
// text the prototype was generated from.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `json:"user_id,omitempty"`
}

// CodeReady reports whether the project's code is past the emptiness
// threshold.
func (p Project) CodeReady() bool {
	return len(strings.TrimSpace(p.Code)) > CodeReadyThreshold
}

// IsPlaceholder reports whether the project is a local stand-in for an
// in-flight background build.
func (p Project) IsPlaceholder() bool {
	return strings.HasPrefix(p.ID, PlaceholderPrefix)
}

// Openable reports whether selecting the project may load it into the
// dashboard.
func (p Project) Openable() bool {
	return p.CodeReady() && !p.IsPlaceholder()
}

// NewPlaceholder builds the stand-in shown in the vault while a background
// build is outstanding. It is never written to the store.
func NewPlaceholder(name, prompt, userID string) Project {
	if strings.TrimSpace(name) == "" {
		name = "Synthesis in Progress"
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = "Cloud synthesis engine is still working on this build."
	}
	return Project{
		ID:        fmt.Sprintf("%s%d", PlaceholderPrefix, time.Now().UnixMilli()),
		Name:      name,
		Prompt:    prompt,
		Code:      "",
		CreatedAt: time.Now().UTC(),
		UserID:    userID,
	}
}

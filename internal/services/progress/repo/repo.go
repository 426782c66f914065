// Package repo provides the Postgres progress repository
package repo

import (
	"context"

	"augeo/internal/modkit/repokit"
	poller "augeo/internal/services/poller/domain"
	"augeo/internal/services/progress/domain"
)

// Repo defines the progress repository contract
type Repo interface {
	// InsertActivity records one activity; inserted is false when the
	// same event was applied before
	InsertActivity(ctx context.Context, a poller.Activity) (inserted bool, err error)

	// AddExperience bumps a skill rollup and returns the new total
	AddExperience(ctx context.Context, userID, skill string, delta int) (int64, error)

	// SetLevel stores the level derived from the new total
	SetLevel(ctx context.Context, userID, skill string, level int) error

	// SkillsOf lists a user's rollups ordered by skill name
	SkillsOf(ctx context.Context, userID string) ([]domain.Skill, error)
}

type (
	// PG is a Postgres progress repository
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG constructs a Postgres progress repository
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Queryer to a Postgres implementation of Repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// InsertActivity is idempotent on (user_id, provider, event_id, kind,
// detail_key) so a replayed poll never double counts
func (r *queries) InsertActivity(ctx context.Context, a poller.Activity) (bool, error) {
	const sql = `
		INSERT INTO activities (
			activity_id, user_id, provider, event_id, kind, skill,
			text, author_name, repo, additions, deletions, experience, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, provider, event_id, kind, repo, text) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, sql,
		a.ID, a.UserID, string(a.Provider), a.EventID, a.Kind, a.Skill,
		a.Text, a.AuthorName, a.Repo, a.Additions, a.Deletions, a.Experience, a.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AddExperience bumps the rollup and returns the new total
func (r *queries) AddExperience(ctx context.Context, userID, skill string, delta int) (int64, error) {
	const sql = `
		INSERT INTO skills (user_id, skill, total_experience, level)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, skill) DO UPDATE
		SET total_experience = skills.total_experience + excluded.total_experience
		RETURNING total_experience
	`
	var total int64
	if err := r.q.QueryRow(ctx, sql, userID, skill, delta).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// SetLevel stores the derived level
func (r *queries) SetLevel(ctx context.Context, userID, skill string, level int) error {
	const sql = `UPDATE skills SET level = $3 WHERE user_id = $1 AND skill = $2`
	_, err := r.q.Exec(ctx, sql, userID, skill, level)
	return err
}

// SkillsOf lists a user's rollups ordered by skill name
func (r *queries) SkillsOf(ctx context.Context, userID string) ([]domain.Skill, error) {
	const sql = `
		SELECT user_id, skill, total_experience, level
		FROM skills
		WHERE user_id = $1
		ORDER BY skill
	`
	rows, err := r.q.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Skill
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.UserID, &s.Skill, &s.TotalExperience, &s.Level); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

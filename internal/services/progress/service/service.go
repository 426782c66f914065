// Package service contains the progress workflows
package service

import (
	"context"

	"augeo/internal/core/xp"
	"augeo/internal/modkit"
	"augeo/internal/modkit/repokit"
	"augeo/internal/platform/logger"
	"augeo/internal/platform/store"
	poller "augeo/internal/services/poller/domain"
	"augeo/internal/services/progress/domain"
	"augeo/internal/services/progress/repo"
)

// Service defines the progress service contract
type Service interface {
	domain.ApplierPort
	domain.ReaderPort
}

// Svc implements the progress service
type Svc struct {
	deps   modkit.Deps
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	ch     store.Clickhouse
}

// New constructs a progress service. The columnar archive is optional;
// when deps.CH is nil activities only land in Postgres
func New(deps modkit.Deps) *Svc {
	if deps.PG == nil {
		panic("progress.Service requires a non nil TxRunner")
	}
	b := repo.NewPG()
	return &Svc{
		deps:   deps,
		Repo:   b.Bind(deps.PG),
		binder: b,
		db:     deps.PG,
		ch:     deps.CH,
	}
}

// Apply folds one poll cycle's activities into the user's skill rollups
// in a single transaction, then mirrors them into the archive. Replayed
// events are skipped via the activity unique key so Apply is safe to
// call again with the same batch
func (s *Svc) Apply(ctx context.Context, user poller.UserProfile, acts []poller.Activity) error {
	if len(acts) == 0 {
		return nil
	}
	log := logger.C(ctx)

	var applied []poller.Activity
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		for _, a := range acts {
			inserted, err := r.InsertActivity(ctx, a)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}
			total, err := r.AddExperience(ctx, a.UserID, a.Skill, a.Experience)
			if err != nil {
				return err
			}
			if err := r.SetLevel(ctx, a.UserID, a.Skill, xp.Level(total)); err != nil {
				return err
			}
			applied = append(applied, a)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("user_id", user.UserID).
		Int("batch", len(acts)).
		Int("applied", len(applied)).
		Msg("activities applied")

	s.archive(ctx, applied)
	return nil
}

// archive mirrors applied activities into the columnar store, best
// effort; the rollups are already committed
func (s *Svc) archive(ctx context.Context, acts []poller.Activity) {
	if s.ch == nil || len(acts) == 0 {
		return
	}

	cols := []string{
		"activity_id", "user_id", "provider", "event_id", "kind", "skill",
		"repo", "author_name", "additions", "deletions", "experience", "created_at",
	}
	rows := make([][]any, 0, len(acts))
	for _, a := range acts {
		rows = append(rows, []any{
			a.ID, a.UserID, string(a.Provider), a.EventID, a.Kind, a.Skill,
			a.Repo, a.AuthorName, int32(a.Additions), int32(a.Deletions), int32(a.Experience), a.CreatedAt,
		})
	}
	if err := s.ch.Insert(ctx, "activities_archive", cols, rows); err != nil {
		logger.C(ctx).Warn().Err(err).Int("rows", len(rows)).Msg("activity archive insert failed")
	}
}

// SkillsOf lists a user's rollups
func (s *Svc) SkillsOf(ctx context.Context, userID string) ([]domain.Skill, error) {
	return s.Repo.SkillsOf(ctx, userID)
}

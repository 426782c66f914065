// Package domain defines the public ports for the progress service
package domain

import (
	"context"

	poller "augeo/internal/services/poller/domain"
)

// Skill is the per user per skill experience rollup
type Skill struct {
	UserID          string
	Skill           string
	TotalExperience int64
	Level           int
}

// ApplierPort folds scored activities into the user's skill rollups.
// It doubles as the poller's activity sink
type ApplierPort interface {
	Apply(ctx context.Context, user poller.UserProfile, acts []poller.Activity) error
}

// ReaderPort serves the rollup read side
type ReaderPort interface {
	SkillsOf(ctx context.Context, userID string) ([]Skill, error)
}

package service

import (
	"context"

	"augeo/internal/services/poller/domain"
)

// EnqueueNow pulls a subscription's next poll forward to now
func (s *Svc) EnqueueNow(ctx context.Context, userID string, p domain.Provider) error {
	return s.States.EnqueueNow(ctx, userID, p)
}

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	perr "augeo/internal/platform/errors"
	"augeo/internal/services/poller/domain"
)

// Run starts the poll scheduler. Each tick leases due subscriptions and
// polls them one by one; per subscription failures reschedule that
// subscription and never stop the loop
func (s *Svc) Run(ctx context.Context) error {
	t := time.NewTicker(s.config.Tick)
	defer t.Stop()

	s.deps.Log.Info().
		Dur("tick", s.config.Tick).
		Int("batch", s.config.BatchSize).
		Msg("poll scheduler started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			subs, err := s.States.DueSubscriptions(ctx, s.config.BatchSize, s.now().UTC())
			if err != nil {
				return err
			}
			for _, sub := range subs {
				if err := s.pollOne(ctx, sub); err != nil && ctx.Err() != nil {
					return ctx.Err()
				}
			}
		}
	}
}

// pollOne runs a single leased subscription through a full cycle. The
// cursor is only saved after the sink accepted the activities, so a
// failed apply replays the same events next cycle instead of losing them
func (s *Svc) pollOne(ctx context.Context, sub domain.Subscription) error {
	res, err := s.Poll(ctx, sub)
	if err != nil {
		s.reschedule(ctx, sub, err)
		return err
	}

	if s.sink != nil && len(res.Activities) > 0 {
		if err := s.sink.Apply(ctx, sub.User, res.Activities); err != nil {
			s.reschedule(ctx, sub, err)
			return err
		}
	}

	st := res.State
	st.NextPollAt = s.now().UTC().Add(res.NextWait)
	return s.States.SaveResult(ctx, sub, st)
}

// parkFor is the retry cadence once a subscription has burned through
// MaxAttempts; a success resets the counter and the normal ladder
const parkFor = time.Hour

func (s *Svc) reschedule(ctx context.Context, sub domain.Subscription, cause error) {
	back := backoffFor(sub.Attempts, s.config.RetryBase)
	if perr.IsCode(cause, perr.ErrorCodeTooManyRequests) {
		back += 5 * time.Second
	}

	parked := sub.Attempts+1 >= s.config.MaxAttempts
	if parked {
		back = parkFor
	}

	_ = s.States.Reschedule(ctx, sub, s.now().UTC().Add(back))
	var ev *zerolog.Event
	if parked {
		ev = s.deps.Log.Error().Int("attempts", sub.Attempts+1)
	} else {
		ev = s.deps.Log.Warn()
	}
	ev.
		Err(cause).
		Str("user_id", sub.UserID).
		Str("provider", string(sub.Provider)).
		Dur("backoff", back).
		Msg("poll failed scheduled retry")
}

func backoffFor(attempts int, base time.Duration) time.Duration {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	if attempts < 0 {
		attempts = 0
	}
	ms := min(int64(base/time.Millisecond)<<uint(attempts), int64(10*time.Minute/time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}

// Package repo provides the Postgres poll state repository
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"time"

	"augeo/internal/modkit/repokit"
	perr "augeo/internal/platform/errors"
	tim "augeo/internal/platform/time"
	"augeo/internal/services/poller/domain"
)

type (
	// PG is a Postgres poll state repository
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// leaseFor is how long a leased subscription stays invisible to other
// scheduler ticks before it is considered abandoned
const leaseFor = 30 * time.Second

// NewPG constructs a Postgres poll state repository
func NewPG() repokit.Binder[domain.StatePort] { return PG{} }

// Bind binds a Queryer to a Postgres implementation of StatePort
func (PG) Bind(q repokit.Queryer) domain.StatePort { return &queries{q: q} }

// Upsert registers a subscription or refreshes its profile and
// credentials. An existing cursor survives so a profile update never
// replays the whole feed. A zero NextPollAt means "poll right away"
func (r *queries) Upsert(ctx context.Context, sub domain.Subscription) error {
	const sql = `
		INSERT INTO poll_subscriptions (
			user_id, provider, username, first_name, last_name, email, handle,
			auth_token, auth_secret, cursor_path, etag, last_event_id,
			resume_mark, next_poll_at, attempts
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '', '', 0, 0, COALESCE($10, NOW()), 0)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			handle = excluded.handle,
			auth_token = excluded.auth_token,
			auth_secret = excluded.auth_secret
	`
	_, err := r.q.Exec(ctx, sql,
		sub.UserID, string(sub.Provider),
		sub.User.Username, sub.User.FirstName, sub.User.LastName, sub.User.Email, sub.User.Handle,
		sub.Auth.Token, sub.Auth.Secret,
		tim.Ptr(sub.State.NextPollAt),
	)
	return err
}

// Get returns the stored subscription for the pair
func (r *queries) Get(ctx context.Context, userID string, p domain.Provider) (domain.Subscription, error) {
	const sql = `
		SELECT user_id, provider, username, first_name, last_name, email,
		       handle, auth_token, auth_secret, cursor_path, etag,
		       last_event_id, resume_mark, next_poll_at, attempts
		FROM poll_subscriptions
		WHERE user_id = $1 AND provider = $2
	`
	var (
		sub      domain.Subscription
		provider string
	)
	row := r.q.QueryRow(ctx, sql, userID, string(p))
	if err := row.Scan(
		&sub.UserID, &provider,
		&sub.User.Username, &sub.User.FirstName, &sub.User.LastName,
		&sub.User.Email, &sub.User.Handle,
		&sub.Auth.Token, &sub.Auth.Secret,
		&sub.State.CursorPath, &sub.State.ETag, &sub.State.LastEventID,
		&sub.State.ResumeMark, &sub.State.NextPollAt, &sub.Attempts,
	); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.Subscription{}, perr.NotFoundf("subscription %s/%s not found", userID, p)
		}
		return domain.Subscription{}, err
	}
	sub.Provider = domain.Provider(provider)
	sub.User.UserID = sub.UserID
	return sub, nil
}

// Remove drops the subscription
func (r *queries) Remove(ctx context.Context, userID string, p domain.Provider) error {
	const sql = `DELETE FROM poll_subscriptions WHERE user_id = $1 AND provider = $2`
	_, err := r.q.Exec(ctx, sql, userID, string(p))
	return err
}

// DueSubscriptions leases up to limit due subscriptions, oldest first.
// SKIP LOCKED keeps concurrent schedulers from double polling a feed
func (r *queries) DueSubscriptions(ctx context.Context, limit int, now time.Time) ([]domain.Subscription, error) {
	const sql = `
		WITH due AS (
			SELECT user_id, provider
			FROM poll_subscriptions
			WHERE next_poll_at <= $2
			  AND (leased_until IS NULL OR leased_until <= $2)
			ORDER BY next_poll_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE poll_subscriptions s
		SET leased_until = $2 + make_interval(secs => $3)
		FROM due
		WHERE s.user_id = due.user_id AND s.provider = due.provider
		RETURNING
			s.user_id, s.provider, s.username, s.first_name, s.last_name,
			s.email, s.handle, s.auth_token, s.auth_secret,
			s.cursor_path, s.etag, s.last_event_id, s.resume_mark,
			s.next_poll_at, s.attempts
	`
	rows, err := r.q.Query(ctx, sql, limit, now, leaseFor.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Subscription
	for rows.Next() {
		var (
			sub      domain.Subscription
			provider string
		)
		if err := rows.Scan(
			&sub.UserID, &provider,
			&sub.User.Username, &sub.User.FirstName, &sub.User.LastName,
			&sub.User.Email, &sub.User.Handle,
			&sub.Auth.Token, &sub.Auth.Secret,
			&sub.State.CursorPath, &sub.State.ETag, &sub.State.LastEventID,
			&sub.State.ResumeMark, &sub.State.NextPollAt, &sub.Attempts,
		); err != nil {
			return nil, err
		}
		sub.Provider = domain.Provider(provider)
		sub.User.UserID = sub.UserID
		out = append(out, sub)
	}
	return out, rows.Err()
}

// SaveResult persists the advanced cursor after a successful poll,
// clears the failure counter and releases the lease
func (r *queries) SaveResult(ctx context.Context, sub domain.Subscription, state domain.PollState) error {
	const sql = `
		UPDATE poll_subscriptions
		SET cursor_path = $3,
		    etag = $4,
		    last_event_id = $5,
		    resume_mark = $6,
		    next_poll_at = $7,
		    attempts = 0,
		    leased_until = NULL
		WHERE user_id = $1 AND provider = $2
	`
	_, err := r.q.Exec(ctx, sql,
		sub.UserID, string(sub.Provider),
		state.CursorPath, state.ETag, state.LastEventID, state.ResumeMark, state.NextPollAt,
	)
	return err
}

// Reschedule bumps the failure counter and pushes the next poll out
// without touching the cursor
func (r *queries) Reschedule(ctx context.Context, sub domain.Subscription, retryAt time.Time) error {
	const sql = `
		UPDATE poll_subscriptions
		SET attempts = attempts + 1,
		    next_poll_at = $3,
		    leased_until = NULL
		WHERE user_id = $1 AND provider = $2
	`
	_, err := r.q.Exec(ctx, sql, sub.UserID, string(sub.Provider), retryAt)
	return err
}

// EnqueueNow makes the subscription immediately due
func (r *queries) EnqueueNow(ctx context.Context, userID string, p domain.Provider) error {
	const sql = `
		UPDATE poll_subscriptions
		SET next_poll_at = NOW(),
		    leased_until = NULL
		WHERE user_id = $1 AND provider = $2
	`
	_, err := r.q.Exec(ctx, sql, userID, string(p))
	return err
}

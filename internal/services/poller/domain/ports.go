// Package domain defines the public ports for the poller service
package domain

import (
	"context"
	"time"
)

// ProviderPort adapts one upstream feed. Implementations live under
// internal/adapters/provider and must be safe for concurrent use
type ProviderPort interface {
	Name() Provider

	// FetchPage fetches one feed page. path "" means the feed root and
	// etag "" skips the conditional header. Events come back newest
	// first in feed order
	FetchPage(ctx context.Context, auth Auth, user UserProfile, path, etag string) ([]RawEvent, PageMeta, error)

	// Extract cuts attributed candidates from one raw event. Events
	// that do not belong to the user yield an empty slice
	Extract(ev RawEvent, user UserProfile) []Candidate

	// FetchDetail resolves the detail document behind a candidate.
	// ok is false when the document exists but carries no usable stats
	FetchDetail(ctx context.Context, auth Auth, c Candidate) (d Detail, ok bool, err error)

	// FetchProfile fetches the provider-side public profile
	FetchProfile(ctx context.Context, auth Auth, handle string) (RemoteProfile, error)
}

// PollerPort runs one poll cycle for one subscription
type PollerPort interface {
	Poll(ctx context.Context, sub Subscription) (PollResult, error)
}

// ActivitySinkPort receives the scored activities of a poll cycle
type ActivitySinkPort interface {
	Apply(ctx context.Context, user UserProfile, acts []Activity) error
}

// WorkerPort runs the long-lived poll scheduler
type WorkerPort interface {
	Run(ctx context.Context) error
}

// SignalsPort is a non-blocking enqueue surface; call it to pull a
// subscription's next poll forward to now
type SignalsPort interface {
	EnqueueNow(ctx context.Context, userID string, p Provider) error
}

// StatePort persists subscriptions and their poll cursors
type StatePort interface {
	// Upsert registers a subscription or refreshes its profile and
	// credentials, keeping any existing cursor
	Upsert(ctx context.Context, sub Subscription) error
	// Get returns the stored subscription for the pair, NotFound when
	// none exists
	Get(ctx context.Context, userID string, p Provider) (Subscription, error)
	// Remove drops the subscription. An in-flight poll finishes but
	// its result has no row to land on
	Remove(ctx context.Context, userID string, p Provider) error
	// DueSubscriptions leases up to limit subscriptions whose
	// NextPollAt has passed, ordered oldest first
	DueSubscriptions(ctx context.Context, limit int, now time.Time) ([]Subscription, error)

	// SaveResult persists the advanced cursor after a successful poll
	// and clears the failure counter
	SaveResult(ctx context.Context, sub Subscription, state PollState) error

	// Reschedule bumps the failure counter and pushes the next poll to
	// retryAt without touching the cursor
	Reschedule(ctx context.Context, sub Subscription, retryAt time.Time) error

	// EnqueueNow makes the subscription immediately due
	EnqueueNow(ctx context.Context, userID string, p Provider) error
}

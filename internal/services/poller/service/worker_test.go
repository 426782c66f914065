package service

import (
	"context"
	"testing"
	"time"

	"augeo/internal/modkit"
	"augeo/internal/platform/config"
	perr "augeo/internal/platform/errors"
	"augeo/internal/platform/logger"
	"augeo/internal/services/poller/domain"
)

func modkitDeps() modkit.Deps {
	return modkit.Deps{
		Log: *logger.Named("test"),
		Cfg: config.New(),
		PG:  stubDB{},
	}
}

// fakeStates records scheduler writes
type fakeStates struct {
	saved       []domain.PollState
	rescheduled []time.Time
	enqueued    []string
}

func (f *fakeStates) Upsert(context.Context, domain.Subscription) error { return nil }

func (f *fakeStates) Get(context.Context, string, domain.Provider) (domain.Subscription, error) {
	return domain.Subscription{}, nil
}

func (f *fakeStates) Remove(context.Context, string, domain.Provider) error { return nil }

func (f *fakeStates) DueSubscriptions(context.Context, int, time.Time) ([]domain.Subscription, error) {
	return nil, nil
}

func (f *fakeStates) SaveResult(_ context.Context, _ domain.Subscription, st domain.PollState) error {
	f.saved = append(f.saved, st)
	return nil
}

func (f *fakeStates) Reschedule(_ context.Context, _ domain.Subscription, retryAt time.Time) error {
	f.rescheduled = append(f.rescheduled, retryAt)
	return nil
}

func (f *fakeStates) EnqueueNow(_ context.Context, userID string, _ domain.Provider) error {
	f.enqueued = append(f.enqueued, userID)
	return nil
}

// fakeSink collects applied activities, optionally failing
type fakeSink struct {
	applied [][]domain.Activity
	fail    bool
}

func (f *fakeSink) Apply(_ context.Context, _ domain.UserProfile, acts []domain.Activity) error {
	if f.fail {
		return perr.DBf("sink down")
	}
	f.applied = append(f.applied, acts)
	return nil
}

func TestPollOneSavesAdvancedCursor(t *testing.T) {
	t.Parallel()

	fp := &fakeProvider{
		pages: map[string]fakePage{
			"": {evs: []domain.RawEvent{ev("30", "push", "")}, meta: okMeta("")},
		},
	}
	sink := &fakeSink{}
	states := &fakeStates{}

	s := New(modkitDeps(), Config{DefaultPollInterval: time.Minute}, []domain.ProviderPort{fp}, sink)
	s.now = func() time.Time { return testNow }
	s.States = states

	if err := s.pollOne(context.Background(), testSub(domain.PollState{})); err != nil {
		t.Fatalf("pollOne: %v", err)
	}

	if len(sink.applied) != 1 || len(sink.applied[0]) != 1 {
		t.Fatalf("sink applied = %+v", sink.applied)
	}
	if len(states.saved) != 1 {
		t.Fatalf("saved states = %d, want 1", len(states.saved))
	}
	st := states.saved[0]
	if st.LastEventID != 30 {
		t.Fatalf("saved mark = %d", st.LastEventID)
	}
	if !st.NextPollAt.Equal(testNow.Add(time.Minute)) {
		t.Fatalf("next poll at = %v, want now + advisory wait", st.NextPollAt)
	}
	if len(states.rescheduled) != 0 {
		t.Fatalf("unexpected reschedule %v", states.rescheduled)
	}
}

func TestPollOneSinkFailureKeepsCursor(t *testing.T) {
	t.Parallel()

	fp := &fakeProvider{
		pages: map[string]fakePage{
			"": {evs: []domain.RawEvent{ev("30", "push", "")}, meta: okMeta("")},
		},
	}
	sink := &fakeSink{fail: true}
	states := &fakeStates{}

	s := New(modkitDeps(), Config{DefaultPollInterval: time.Minute}, []domain.ProviderPort{fp}, sink)
	s.now = func() time.Time { return testNow }
	s.States = states

	if err := s.pollOne(context.Background(), testSub(domain.PollState{})); err == nil {
		t.Fatal("pollOne should surface the sink failure")
	}
	if len(states.saved) != 0 {
		t.Fatalf("cursor saved despite sink failure: %+v", states.saved)
	}
	if len(states.rescheduled) != 1 {
		t.Fatalf("rescheduled = %d, want 1", len(states.rescheduled))
	}
}

func TestPollOneRateLimitBacksOffExtra(t *testing.T) {
	t.Parallel()

	fp := &fakeProvider{
		pages: map[string]fakePage{
			"": {err: perr.Newf(perr.ErrorCodeTooManyRequests, "rate limited")},
		},
	}
	states := &fakeStates{}

	s := New(modkitDeps(), Config{RetryBase: time.Second}, []domain.ProviderPort{fp}, nil)
	s.now = func() time.Time { return testNow }
	s.States = states

	sub := testSub(domain.PollState{})
	sub.Attempts = 2
	if err := s.pollOne(context.Background(), sub); err == nil {
		t.Fatal("pollOne should surface the poll failure")
	}

	if len(states.rescheduled) != 1 {
		t.Fatalf("rescheduled = %d, want 1", len(states.rescheduled))
	}
	// base 1s shifted by 2 attempts plus the rate limit penalty
	want := testNow.Add(4*time.Second + 5*time.Second)
	if !states.rescheduled[0].Equal(want) {
		t.Fatalf("retry at = %v, want %v", states.rescheduled[0], want)
	}
}

func TestPollOneParksAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	fp := &fakeProvider{
		pages: map[string]fakePage{
			"": {err: perr.Newf(perr.ErrorCodeUnavailable, "provider down")},
		},
	}
	states := &fakeStates{}

	s := New(modkitDeps(), Config{RetryBase: time.Second, MaxAttempts: 3}, []domain.ProviderPort{fp}, nil)
	s.now = func() time.Time { return testNow }
	s.States = states

	// one failure short of the cap still follows the backoff ladder
	sub := testSub(domain.PollState{})
	sub.Attempts = 1
	if err := s.pollOne(context.Background(), sub); err == nil {
		t.Fatal("pollOne should surface the poll failure")
	}
	if want := testNow.Add(2 * time.Second); !states.rescheduled[0].Equal(want) {
		t.Fatalf("retry at = %v, want %v", states.rescheduled[0], want)
	}

	// the failure that reaches the cap parks the subscription
	sub.Attempts = 2
	if err := s.pollOne(context.Background(), sub); err == nil {
		t.Fatal("pollOne should surface the poll failure")
	}
	if len(states.rescheduled) != 2 {
		t.Fatalf("rescheduled = %d, want 2", len(states.rescheduled))
	}
	if want := testNow.Add(parkFor); !states.rescheduled[1].Equal(want) {
		t.Fatalf("parked retry at = %v, want %v", states.rescheduled[1], want)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	s := New(modkitDeps(), Config{Tick: 5 * time.Millisecond}, nil, nil)
	s.States = &fakeStates{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

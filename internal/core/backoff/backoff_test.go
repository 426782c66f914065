package backoff

import (
	"testing"
	"time"
)

func TestWait(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name string
		rate Rate
		want time.Duration
	}{
		{
			name: "spreads window across remaining budget",
			rate: Rate{ResetEpoch: now.Unix() + 60, Remaining: 30, Present: true},
			want: 2*time.Second + 100*time.Millisecond,
		},
		{
			name: "zero remaining waits out the full window",
			rate: Rate{ResetEpoch: now.Unix() + 60, Remaining: 0, Present: true},
			want: 60*time.Second + 100*time.Millisecond,
		},
		{
			name: "single remaining equals full window",
			rate: Rate{ResetEpoch: now.Unix() + 45, Remaining: 1, Present: true},
			want: 45*time.Second + 100*time.Millisecond,
		},
		{
			name: "reset in the past retries quickly",
			rate: Rate{ResetEpoch: now.Unix() - 5, Remaining: 10, Present: true},
			want: StaleWait,
		},
		{
			name: "reset exactly now divides zero window",
			rate: Rate{ResetEpoch: now.Unix(), Remaining: 10, Present: true},
			want: 100 * time.Millisecond,
		},
		{
			name: "absent headers fall back to the default",
			rate: Rate{},
			want: DefaultWait,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Wait(tc.rate, now); got != tc.want {
				t.Fatalf("Wait(%+v) = %v, want %v", tc.rate, got, tc.want)
			}
		})
	}
}

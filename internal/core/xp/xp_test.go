package xp

import "testing"

func TestForCommit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		additions int
		want      int
	}{
		{"additions drive the award", 42, 42},
		{"single addition", 1, 1},
		{"empty commit earns the floor", 0, MinExperience},
		{"deletion-only commit earns the floor", -7, MinExperience},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ForCommit(tc.additions); got != tc.want {
				t.Fatalf("ForCommit(%d) = %d, want %d", tc.additions, got, tc.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		exp  int64
		want int
	}{
		{0, 1},
		{29, 1},
		{30, 2},
		{89, 2},
		{90, 3},
	}
	for _, tc := range cases {
		if got := Level(tc.exp); got != tc.want {
			t.Fatalf("Level(%d) = %d, want %d", tc.exp, got, tc.want)
		}
	}

	// curve is monotonic
	prev := 0
	for exp := int64(0); exp <= 10_000; exp += 37 {
		lv := Level(exp)
		if lv < prev {
			t.Fatalf("Level(%d) = %d regressed below %d", exp, lv, prev)
		}
		prev = lv
	}
}

func TestNextLevelAt(t *testing.T) {
	t.Parallel()

	for _, exp := range []int64{0, 10, 30, 250, 9001} {
		threshold := NextLevelAt(exp)
		if threshold <= exp {
			t.Fatalf("NextLevelAt(%d) = %d, want > current total", exp, threshold)
		}
		if Level(threshold) != Level(exp)+1 {
			t.Fatalf("Level(NextLevelAt(%d)) = %d, want %d", exp, Level(threshold), Level(exp)+1)
		}
	}
}

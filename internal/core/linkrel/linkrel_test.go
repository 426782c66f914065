package linkrel

import "testing"

func TestNext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "single next entry",
			header: `<https://api.github.com/users/kira/events?page=2>; rel="next"`,
			want:   "/users/kira/events?page=2",
		},
		{
			name: "next among other rels",
			header: `<https://api.github.com/users/kira/events?page=2>; rel="next", ` +
				`<https://api.github.com/users/kira/events?page=10>; rel="last"`,
			want: "/users/kira/events?page=2",
		},
		{
			name: "last duplicate next wins",
			header: `<https://api.github.com/users/kira/events?page=2>; rel="next", ` +
				`<https://api.github.com/users/kira/events?page=3>; rel="next"`,
			want: "/users/kira/events?page=3",
		},
		{
			name:   "no next entry",
			header: `<https://api.github.com/users/kira/events?page=1>; rel="prev"`,
			want:   "",
		},
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
		{
			name:   "url without query keeps bare path",
			header: `<https://api.github.com/users/kira/events>; rel="next"`,
			want:   "/users/kira/events",
		},
		{
			name:   "malformed segment is skipped",
			header: `garbage, <https://api.github.com/users/kira/events?page=4>; rel="next"`,
			want:   "/users/kira/events?page=4",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Next(tc.header); got != tc.want {
				t.Fatalf("Next(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	header := `<https://x.test/a?p=2>; rel="next", <https://x.test/a?p=9>; rel="last"`
	got := Parse(header)
	if len(got) != 2 {
		t.Fatalf("Parse returned %d entries, want 2", len(got))
	}
	if got[0].Rel != "next" || got[0].URL != "https://x.test/a?p=2" {
		t.Fatalf("entry 0 = %+v", got[0])
	}
	if got[1].Rel != "last" || got[1].URL != "https://x.test/a?p=9" {
		t.Fatalf("entry 1 = %+v", got[1])
	}
}

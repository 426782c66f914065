package identity

import "testing"

func TestFold(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Kira Yoshikage", "kira yoshikage"},
		{"strips accents", "José Núñez", "jose nunez"},
		{"strips precomposed accents", "José", "jose"},
		{"strips combining accents", "José", "jose"},
		{"folds fullwidth", "Ｋｉｒａ", "kira"},
		{"collapses whitespace", "  kira \t yoshikage  ", "kira yoshikage"},
		{"empty stays empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Fold(tc.in); got != tc.want {
				t.Fatalf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNameMatches(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		author string
		first  string
		last   string
		want   bool
	}{
		{"exact name", "Kira Yoshikage", "Kira", "Yoshikage", true},
		{"decorated author", "Yoshikage (Kira) <dev>", "kira", "yoshikage", true},
		{"accented author plain profile", "José Núñez", "Jose", "Nunez", true},
		{"first name only", "Kira H.", "Kira", "Yoshikage", false},
		{"unrelated author", "Rohan Kishibe", "Kira", "Yoshikage", false},
		{"empty last never matches", "Kira Yoshikage", "Kira", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NameMatches(tc.author, tc.first, tc.last); got != tc.want {
				t.Fatalf("NameMatches(%q, %q, %q) = %v, want %v",
					tc.author, tc.first, tc.last, got, tc.want)
			}
		})
	}
}

func TestEmailMatches(t *testing.T) {
	t.Parallel()

	if !EmailMatches("Kira@Example.COM", "kira@example.com") {
		t.Fatal("case difference should still match")
	}
	if EmailMatches("other@example.com", "kira@example.com") {
		t.Fatal("different address must not match")
	}
	if EmailMatches("anything", "") {
		t.Fatal("empty registered email must never match")
	}
}

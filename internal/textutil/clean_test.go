package textutil

import "testing"

func TestCleanName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Acme Corp  ", "Acme Corp"},
		{"\ufeffAcme", "Acme"},
		{"  Acme   Corp  ", "Acme   Corp"},
		{"Ali\u200cReza", "Ali\u200cReza"},
		{"Acme\u200b Inc", "Acme\u200b Inc"},
		{"Globex\t\tLtd", "Globex\t\tLtd"},
		{"Ini\x00tech\u0085", "Initech"},
		{"Cafe\u0301", "Caf\u00e9"},
		{"\x00\x07", ""},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanName(tc.in); got != tc.want {
			t.Fatalf("CleanName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"results", "results.csv"},
		{"results.csv", "results.csv"},
		{"results.CSV", "results.CSV"},
		{"a/b:c", "a-b-c.csv"},
		{"  ", "fallback.csv"},
		{"...", "fallback.csv"},
		{"what?", "what.csv"},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in, ".csv", "fallback.csv"); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

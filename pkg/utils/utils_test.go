package utils

import "testing"

func TestFormatLeaderboardEntry(t *testing.T) {
	cases := []struct {
		rank int
		want string
	}{
		{1, "🥇 **ada** - 42 pts"},
		{2, "🥈 **ada** - 42 pts"},
		{3, "🥉 **ada** - 42 pts"},
		{4, "4. **ada** - 42 pts"},
	}
	for _, tc := range cases {
		if got := FormatLeaderboardEntry(tc.rank, "ada", 42); got != tc.want {
			t.Fatalf("rank %d: got %q want %q", tc.rank, got, tc.want)
		}
	}
}

func TestTruncateStringCountsRunes(t *testing.T) {
	if got := TruncateString("héllo wörld", 5); got != "héllo" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := TruncateString("short", 300); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := Preview("abcdef", 3); got != "abc..." {
		t.Fatalf("unexpected preview: %q", got)
	}
}

func TestFormatDurations(t *testing.T) {
	if got := FormatDuration(3725); got != "1:02:05" {
		t.Fatalf("FormatDuration: %q", got)
	}
	if got := FormatMinutes(42); got != "42m" {
		t.Fatalf("FormatMinutes: %q", got)
	}
	if got := FormatMinutes(65); got != "1h 05m" {
		t.Fatalf("FormatMinutes: %q", got)
	}
}

func TestFormatMentions(t *testing.T) {
	if got := FormatUserMention("42"); got != "<@42>" {
		t.Fatalf("user mention: %q", got)
	}
	if got := FormatChannelMention("7"); got != "<#7>" {
		t.Fatalf("channel mention: %q", got)
	}
}

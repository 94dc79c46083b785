package pixel

import "testing"

func TestCreditsRemaining(t *testing.T) {
	cases := []struct {
		max, recent, want int
	}{
		{max: 10, recent: 0, want: 10},
		{max: 10, recent: 7, want: 3},
		{max: 10, recent: 10, want: 0},
		{max: 10, recent: 15, want: 0},
	}
	for _, c := range cases {
		got := CreditsRemaining(c.max, c.recent)
		if got != c.want {
			t.Errorf("CreditsRemaining(%d, %d) = %d, want %d", c.max, c.recent, got, c.want)
		}
	}
}

func TestSecondsUntilNextCredit(t *testing.T) {
	if got := SecondsUntilNextCredit(10, 5, 60); got != 0 {
		t.Errorf("expected 0 when under limit, got %d", got)
	}
	if got := SecondsUntilNextCredit(10, 10, 60); got != 60 {
		t.Errorf("expected regen rate when at limit, got %d", got)
	}
}

package leveling

import "testing"

func TestXPForMessage(t *testing.T) {
	for _, tc := range []struct {
		content string
		extra   int64
		trigger int64
		want    int64
	}{
		{"hi", DefaultExtraXP, DefaultExtraTrigger, 3},
		{"", 2, 1, 3},
		{"hello", 2, 1, 13},
		{"hello world", 1, 5, 5},
		{"héllo", 1, 1, 8}, // counts characters, not bytes
		{"hello", 1, 0, 8}, // trigger 0 falls back to 1
	} {
		if got := XPForMessage(tc.content, tc.extra, tc.trigger); got != tc.want {
			t.Errorf("XPForMessage(%q, %d, %d) = %d, want %d", tc.content, tc.extra, tc.trigger, got, tc.want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	for _, tc := range []struct {
		xp, perLevel, want int64
	}{
		{0, 500, 0},
		{499, 500, 0},
		{500, 500, 1},
		{1250, 500, 2},
		{1250, 0, 2}, // falls back to the default
		{-10, 500, 0},
		{30, 10, 3},
	} {
		if got := LevelForXP(tc.xp, tc.perLevel); got != tc.want {
			t.Errorf("LevelForXP(%d, %d) = %d, want %d", tc.xp, tc.perLevel, got, tc.want)
		}
	}
}

func TestXPForLevel(t *testing.T) {
	if got := XPForLevel(3, 500); got != 1500 {
		t.Errorf("XPForLevel(3, 500) = %d, want 1500", got)
	}
	if got := XPForLevel(LevelForXP(1499, 500)+1, 500); got != 1500 {
		t.Errorf("next level xp = %d, want 1500", got)
	}
}

func TestLevelUpMessage(t *testing.T) {
	if got := LevelUpMessage("42", 7); got != "<@42> has reached level 7!" {
		t.Errorf("unexpected message: %q", got)
	}
}

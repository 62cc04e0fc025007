// Package leveling turns chat activity into XP and levels.
package leveling

import (
	"fmt"
	"unicode/utf8"
)

const (
	DefaultXPPerLevel int64 = 500

	BaseXP              int64 = 3
	DefaultExtraXP      int64 = 0
	DefaultExtraTrigger int64 = 1
)

// XPForMessage gives BaseXP for any message plus extra XP for
// every trigger characters of content.
func XPForMessage(content string, extra, trigger int64) int64 {
	if trigger <= 0 {
		trigger = DefaultExtraTrigger
	}
	return BaseXP + extra*(int64(utf8.RuneCountInString(content))/trigger)
}

func LevelForXP(xp, xpPerLevel int64) int64 {
	if xpPerLevel <= 0 {
		xpPerLevel = DefaultXPPerLevel
	}
	if xp <= 0 {
		return 0
	}
	return xp / xpPerLevel
}

func XPForLevel(level, xpPerLevel int64) int64 {
	if xpPerLevel <= 0 {
		xpPerLevel = DefaultXPPerLevel
	}
	if level <= 0 {
		return 0
	}
	return level * xpPerLevel
}

func LevelUpMessage(userID string, level int64) string {
	return fmt.Sprintf("<@%s> has reached level %d!", userID, level)
}

package services

import (
	"math"
)

// BaseXPPerLevel: level 1 → 2 needs BaseXPPerLevel * 1^1.2
const BaseXPPerLevel = 100

// maxLevel bounds the level loop for absurd balances.
const maxLevel = 500

// xpForNextLevel returns XP required to reach level+1 from current level
// e.g., xpForNextLevel(1) = XP to go from L1 → L2
func xpForNextLevel(currentLevel int) int64 {
	if currentLevel < 1 {
		currentLevel = 1
	}
	// L_n = floor(BaseXPPerLevel * n^1.2)
	return int64(float64(BaseXPPerLevel) * math.Pow(float64(currentLevel), 1.2))
}

// LevelProgress is the level view of an XP balance.
type LevelProgress struct {
	Level       int   `json:"level"`
	XPIntoLevel int64 `json:"xp_into_level"`
	XPForNext   int64 `json:"xp_for_next"`
}

// ProgressForXP walks the level curve until the balance runs out.
func ProgressForXP(xp int64) LevelProgress {
	if xp < 0 {
		xp = 0
	}
	level := 1
	remaining := xp
	for level < maxLevel {
		need := xpForNextLevel(level)
		if remaining < need {
			return LevelProgress{Level: level, XPIntoLevel: remaining, XPForNext: need}
		}
		remaining -= need
		level++
	}
	return LevelProgress{Level: maxLevel, XPIntoLevel: remaining, XPForNext: 0}
}

func LevelForXP(xp int64) int {
	return ProgressForXP(xp).Level
}

package model

import "strings"

// SFIA experience levels, most junior first.
const (
	LevelFollow      = "Follow"
	LevelAssist      = "Assist"
	LevelApply       = "Apply"
	LevelEnable      = "Enable"
	LevelEnsure      = "Ensure or advise"
	LevelInitiate    = "Initiate or influence"
	LevelSetStrategy = "Set strategy or inspire"
)

var sfiaLevels = []string{
	LevelFollow,
	LevelAssist,
	LevelApply,
	LevelEnable,
	LevelEnsure,
	LevelInitiate,
	LevelSetStrategy,
}

// SFIALevels returns the level names in experience order.
func SFIALevels() []string {
	out := make([]string, len(sfiaLevels))
	copy(out, sfiaLevels)
	return out
}

// LevelRank returns the experience rank of a level name (case-insensitive)
// or -1 for names outside the taxonomy.
func LevelRank(name string) int {
	n := strings.TrimSpace(name)
	for i, l := range sfiaLevels {
		if strings.EqualFold(l, n) {
			return i
		}
	}
	return -1
}

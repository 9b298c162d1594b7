// Package progression holds the level arithmetic. It is the single source
// of truth wherever a level or progress percentage is shown or persisted.
package progression

// XPPerLevel is how much XP a level spans.
const XPPerLevel = 100

// Level derives the level for an XP total. Levels start at 1 and advance
// every XPPerLevel points.
func Level(xp int) int {
	return xp/XPPerLevel + 1
}

// XPForNextLevel returns the XP total at which the next level is reached.
func XPForNextLevel(xp int) int {
	return Level(xp) * XPPerLevel
}

// XPProgressPercent returns how far into the current level the XP total is,
// as a whole percentage. With 100 XP per level this is exact.
func XPProgressPercent(xp int) int {
	return xp - (Level(xp)-1)*XPPerLevel
}

package domain

import "fmt"

// Level is one rung of the fixed ordinal permission ladder. Every level
// comparison downstream is a threshold check against this ladder, never a
// check against raw role identity.
type Level int

const (
	Level0  Level = 0
	Level1  Level = 100
	Level2  Level = 200
	Level3  Level = 300
	Level4  Level = 400
	Level5  Level = 500
	Level6  Level = 600
	Level7  Level = 700
	Level8  Level = 800
	Level9  Level = 900
	Level10 Level = 1000
)

// IsValid reports whether l is one of the ladder values.
func (l Level) IsValid() bool {
	return l >= Level0 && l <= Level10 && int(l)%100 == 0
}

// GE reports whether l meets or exceeds the threshold.
func (l Level) GE(threshold Level) bool {
	return l >= threshold
}

// LT reports whether l is below the threshold.
func (l Level) LT(threshold Level) bool {
	return l < threshold
}

// ParseLevel validates a raw integer against the ladder.
func ParseLevel(raw int) (Level, error) {
	l := Level(raw)
	if !l.IsValid() {
		return Level0, fmt.Errorf("%w: %d", ErrInvalidLevel, raw)
	}
	return l, nil
}

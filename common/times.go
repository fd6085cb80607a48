package common

import "time"

// NormalizeTime drops what a DATETIME(6) column can not hold, so values read back compare equal.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NormalizeTimePtr is NormalizeTime for nullable columns.
func NormalizeTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := NormalizeTime(*t)
	return &n
}

// NonNegative clamps d at zero.
func NonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// NowFunc is the clock handlers stamp transitions with.
var NowFunc = time.Now

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueSegment is the coarse customer value tier used to scale retention
// offer generosity.
type ValueSegment string

const (
	SegmentHigh   ValueSegment = "high"
	SegmentMedium ValueSegment = "medium"
	SegmentLow    ValueSegment = "low"
)

// Monthly-charge tier boundaries. Both intervals are closed at the lower
// bound: 80.00 is high, 40.00 is medium.
const (
	highValueThreshold   = 80.0
	mediumValueThreshold = 40.0
)

// SegmentForMonthlyCharge buckets a raw monthly-charge value into a value
// segment. A malformed value is a hard error, never coerced to zero.
func SegmentForMonthlyCharge(raw string) (ValueSegment, error) {
	monthly, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", fmt.Errorf("parsing monthly charges %q: %w", raw, err)
	}
	switch {
	case monthly >= highValueThreshold:
		return SegmentHigh, nil
	case monthly >= mediumValueThreshold:
		return SegmentMedium, nil
	default:
		return SegmentLow, nil
	}
}

package scheduler

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether [startA, endA) and [startB, endB) share at least one
// instant. Touching endpoints do not overlap, so back-to-back bookings are allowed.
func Overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// Overlaps reports whether the receiver conflicts with other.
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

// OverlapsAny reports whether candidate conflicts with any of the busy intervals.
func OverlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// ParseInterval converts a pair of wall-clock strings into an Interval.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseTimeToMinutes(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseTimeToMinutes(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

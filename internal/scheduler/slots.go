package scheduler

// TimeSlot is one cell of a room's availability grid.
type TimeSlot struct {
	StartTime   string
	EndTime     string
	IsAvailable bool
}

// GenerateSlots lays fixed-length slots over the operating window and marks each one
// unavailable when it overlaps any busy interval.
//
// A trailing remainder shorter than slotDurationMinutes is dropped rather than
// emitted as a short slot. A window with end <= start, or a non-positive duration,
// yields an empty grid.
func GenerateSlots(operatingStart, operatingEnd string, slotDurationMinutes int, busy []Interval) ([]TimeSlot, error) {
	window, err := ParseInterval(operatingStart, operatingEnd)
	if err != nil {
		return nil, err
	}
	if slotDurationMinutes <= 0 || window.End <= window.Start {
		return []TimeSlot{}, nil
	}

	slots := make([]TimeSlot, 0, (window.End-window.Start)/slotDurationMinutes)
	for cursor := window.Start; cursor+slotDurationMinutes <= window.End; cursor += slotDurationMinutes {
		slot := Interval{Start: cursor, End: cursor + slotDurationMinutes}

		start, err := FormatMinutesToTime(slot.Start)
		if err != nil {
			return nil, err
		}
		end, err := FormatMinutesToTime(slot.End)
		if err != nil {
			return nil, err
		}

		slots = append(slots, TimeSlot{
			StartTime:   start,
			EndTime:     end,
			IsAvailable: !OverlapsAny(slot, busy),
		})
	}
	return slots, nil
}

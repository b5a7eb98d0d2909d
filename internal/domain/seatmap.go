package domain

// Seat labels follow the {Row}{Number} convention, e.g. "A1" or "J9". The
// layout below matches the standard hall: rows A-J, seats 1-9 per row. It is
// used only to validate incoming labels; the occupied-seats ledger itself is
// an open string-keyed map, so irregular venues can widen the layout without
// a storage migration.
const (
	minSeatRow    = 'A'
	maxSeatRow    = 'J'
	minSeatNumber = '1'
	maxSeatNumber = '9'
)

// ValidSeatLabel reports whether label names a seat in the hall layout.
func ValidSeatLabel(label string) bool {
	if len(label) != 2 {
		return false
	}

	row, num := label[0], label[1]

	return row >= minSeatRow && row <= maxSeatRow && num >= minSeatNumber && num <= maxSeatNumber
}

// ValidateSeatLabels checks that seats is non-empty, free of duplicates, and
// that every label fits the hall layout.
func ValidateSeatLabels(seats []string) error {
	if len(seats) == 0 {
		return ErrInvalidSeats
	}

	seen := make(map[string]bool, len(seats))

	for _, label := range seats {
		if !ValidSeatLabel(label) || seen[label] {
			return ErrInvalidSeats
		}
		seen[label] = true
	}

	return nil
}

package game

import "fmt"

// Seat identifies one of the four positions at the table, in the fixed
// clockwise order West, North, East, South.
type Seat int

const (
	West Seat = iota
	North
	East
	South
)

// NumSeats is the number of seats at the table.
const NumSeats = 4

// String returns the seat name.
func (s Seat) String() string {
	switch s {
	case West:
		return "West"
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	default:
		return fmt.Sprintf("Seat(%d)", int(s))
	}
}

// ParseSeat converts a seat name to a Seat.
func ParseSeat(name string) (Seat, error) {
	switch name {
	case "West":
		return West, nil
	case "North":
		return North, nil
	case "East":
		return East, nil
	case "South":
		return South, nil
	default:
		return 0, fmt.Errorf("unknown seat %q", name)
	}
}

// Valid reports whether the seat is one of the four table positions.
func (s Seat) Valid() bool {
	return s >= West && s <= South
}

// Next returns the seat to the left, clockwise.
func (s Seat) Next() Seat {
	return (s + 1) % NumSeats
}

// Partner returns the seat across the table.
func (s Seat) Partner() Seat {
	return (s + 2) % NumSeats
}

// Partnership identifies one of the two partnerships.
type Partnership int

const (
	EastWest   Partnership = iota // West and East
	NorthSouth                    // North and South
)

// String returns the partnership name.
func (p Partnership) String() string {
	if p == NorthSouth {
		return "N-S"
	}
	return "E-W"
}

// Other returns the opposing partnership.
func (p Partnership) Other() Partnership {
	return 1 - p
}

// Partnership returns the partnership the seat belongs to.
func (s Seat) Partnership() Partnership {
	return Partnership(s % 2)
}

package solartime

// Slot indexes the traditional two-hour periods. The rat hour spanning
// midnight is split: 0 is the early half (00:00-01:00) and 12 the late half
// (23:00-00:00).
type Slot int

const (
	EarlyRat Slot = 0
	LateRat  Slot = 12
)

var slotNames = [...]string{
	"earlyRatHour", "oxHour", "tigerHour", "rabbitHour", "dragonHour", "snakeHour", "horseHour",
	"goatHour", "monkeyHour", "roosterHour", "dogHour", "pigHour", "lateRatHour",
}

// representative civil hour for each slot; the rat halves use their first hour.
var slotHours = [...]int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 23}

// Valid reports whether s is within [0, 12].
func (s Slot) Valid() bool {
	return s >= EarlyRat && s <= LateRat
}

func (s Slot) String() string {
	if !s.Valid() {
		return "invalidHour"
	}
	return slotNames[s]
}

// Hour returns the representative civil hour of s.
func (s Slot) Hour() (int, bool) {
	if !s.Valid() {
		return 0, false
	}
	return slotHours[s], true
}

// HourToSlot maps an hour of day in [0, 23] to its slot.
func HourToSlot(hour int) Slot {
	switch hour {
	case 0:
		return EarlyRat
	case 23:
		return LateRat
	default:
		return Slot((hour + 1) / 2)
	}
}

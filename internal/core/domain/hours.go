package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Hours is a fixed-point duration in hundredths of an hour.
// It serialises as a JSON number with exactly two decimals (1.50),
// matching the wire contract for hoursWorked and accumulatedHours.
type Hours int64

// HoursFromMinutes converts whole elapsed minutes to Hours, rounding
// half-up at the second decimal (minutes/60 to 2 places).
func HoursFromMinutes(minutes int64) Hours {
	if minutes < 0 {
		minutes = 0
	}
	// hundredths = minutes*100/60 = minutes*5/3
	n := minutes * 5
	h := n / 3
	if n%3 == 2 {
		h++
	}
	return Hours(h)
}

// Add returns the sum of two hour values.
func (h Hours) Add(other Hours) Hours {
	return h + other
}

// String renders the value with two decimals, e.g. "1.50".
func (h Hours) String() string {
	return fmt.Sprintf("%d.%02d", h/100, h%100)
}

// MarshalJSON emits a raw JSON number with two decimals.
func (h Hours) MarshalJSON() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalJSON accepts any JSON number and rounds it to hundredths.
func (h *Hours) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("hours: parse %q: %w", s, err)
	}
	*h = Hours(math.Round(f * 100))
	return nil
}

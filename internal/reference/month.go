package reference

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMonthUnknown is returned when a month name is not recognized.
	ErrMonthUnknown = errors.New("unknown month")

	// ErrMonthOutOfBounds is returned when a numeric month is not in 1-12.
	ErrMonthOutOfBounds = errors.New("month out of bounds")
)

// Month is a calendar month.
type Month int

const (
	Jan Month = iota + 1
	Feb
	Mar
	Apr
	May
	Jun
	Jul
	Aug
	Sep
	Oct
	Nov
	Dec
)

var monthNames = [...]struct{ short, long string }{
	Jan: {"Jan", "January"},
	Feb: {"Feb", "February"},
	Mar: {"Mar", "March"},
	Apr: {"Apr", "April"},
	May: {"May", "May"},
	Jun: {"Jun", "June"},
	Jul: {"Jul", "July"},
	Aug: {"Aug", "August"},
	Sep: {"Sep", "September"},
	Oct: {"Oct", "October"},
	Nov: {"Nov", "November"},
	Dec: {"Dec", "December"},
}

// MonthFromNumber converts 1-12 to a Month.
func MonthFromNumber(n uint64) (Month, error) {
	if n < 1 || n > 12 {
		return 0, fmt.Errorf("%w: %d", ErrMonthOutOfBounds, n)
	}
	return Month(n), nil
}

// ParseMonth parses a numeric month (1-12) or a name whose first three
// letters identify the month, ignoring case ("jan", "January", "SEPT").
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return MonthFromNumber(n)
	}

	prefix := strings.ToLower(s)
	if r := []rune(prefix); len(r) > 3 {
		prefix = string(r[:3])
	}
	for m := Jan; m <= Dec; m++ {
		if strings.ToLower(monthNames[m].short) == prefix {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrMonthUnknown, s)
}

// String returns the full English month name.
func (m Month) String() string {
	if m < Jan || m > Dec {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m].long
}

// Short returns the three-letter month abbreviation.
func (m Month) Short() string {
	if m < Jan || m > Dec {
		return ""
	}
	return monthNames[m].short
}

func (m Month) MarshalText() ([]byte, error) {
	if m < Jan || m > Dec {
		return nil, fmt.Errorf("%w: %d", ErrMonthOutOfBounds, int(m))
	}
	return []byte(monthNames[m].short), nil
}

func (m *Month) UnmarshalText(data []byte) error {
	parsed, err := ParseMonth(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

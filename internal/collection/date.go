package collection

import (
	"fmt"
	"strconv"
	"strings"
)

// Date is an Album release date with year-only, year-month, or full
// year-month-day precision. The zero value means "unknown".
type Date struct {
	Year     int
	Month    uint8
	Day      uint8
	HasMonth bool
	HasDay   bool
}

// String renders the date the way the original tooling does: "Y",
// "Y-MM" or "Y-MM-DD" depending on precision, empty when unknown.
func (d Date) String() string {
	switch {
	case d.Year == 0:
		return ""
	case !d.HasMonth:
		return fmt.Sprintf("%d", d.Year)
	case !d.HasDay:
		return fmt.Sprintf("%d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// Known reports whether the date carries at least a year.
func (d Date) Known() bool { return d.Year != 0 }

// Compare orders dates the way the original collection sorts albums by
// release: unknown dates sort before any known date, then year, then
// month, then day.
func Compare(a, b Date) int {
	if !a.Known() && !b.Known() {
		return 0
	}
	if !a.Known() {
		return -1
	}
	if !b.Known() {
		return 1
	}
	if a.Year != b.Year {
		return a.Year - b.Year
	}
	if !a.HasMonth || !b.HasMonth {
		return 0
	}
	if a.Month != b.Month {
		return int(a.Month) - int(b.Month)
	}
	if !a.HasDay || !b.HasDay {
		return 0
	}
	return int(a.Day) - int(b.Day)
}

// yearMonthDay / monthDayYear / dayMonthYear separators the tolerant
// parser tries, grounded on original_source/src/ccd/date.rs.
var separators = []byte{'-', '/', '.', '_', ' ', 0}

// ParseDate tolerantly parses a release-date tag. It accepts a bare
// 4-digit year, Y-M-D, M-D-Y and D-M-Y across several separators
// (including no separator at all), and retries against the last 8 or 10
// characters of the string to cope with prefixed junk some taggers emit.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if len(s) == 4 {
		if y, err := strconv.Atoi(s); err == nil {
			return Date{Year: y}
		}
		return Date{}
	}

	if d, ok := tryAllOrders(s); ok {
		return d
	}
	if len(s) >= 10 {
		if d, ok := tryAllOrders(s[len(s)-10:]); ok {
			return d
		}
	}
	if len(s) >= 8 {
		if d, ok := tryAllOrders(s[len(s)-8:]); ok {
			return d
		}
	}
	return Date{}
}

func tryAllOrders(s string) (Date, bool) {
	for _, sep := range separators {
		if d, ok := parseOrder(s, sep, orderYMD); ok {
			return d, true
		}
		if d, ok := parseOrder(s, sep, orderMDY); ok {
			return d, true
		}
		if d, ok := parseOrder(s, sep, orderDMY); ok {
			return d, true
		}
	}
	return Date{}, false
}

type order int

const (
	orderYMD order = iota
	orderMDY
	orderDMY
)

// parseOrder splits s into three numeric fields according to sep (0
// meaning "no separator, fixed widths 4-2-2") and interprets them per
// order.
func parseOrder(s string, sep byte, ord order) (Date, bool) {
	var parts []string
	if sep == 0 {
		if len(s) != 8 {
			return Date{}, false
		}
		parts = []string{s[0:4], s[4:6], s[6:8]}
		if ord != orderYMD {
			// non-separated form is only unambiguous as Y-M-D in the
			// original; skip M-D-Y/D-M-Y for the fixed-width case.
			return Date{}, false
		}
	} else {
		parts = strings.Split(s, string(sep))
		if len(parts) != 3 {
			return Date{}, false
		}
	}

	nums := make([]int, 3)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) == 0 || len(p) > 4 {
			return Date{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}

	var year, month, day int
	switch ord {
	case orderYMD:
		year, month, day = nums[0], nums[1], nums[2]
	case orderMDY:
		month, day, year = nums[0], nums[1], nums[2]
	case orderDMY:
		day, month, year = nums[0], nums[1], nums[2]
	}

	if year < 1000 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}

	return Date{Year: year, Month: uint8(month), Day: uint8(day), HasMonth: true, HasDay: true}, true
}

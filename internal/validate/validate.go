package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// PH mobile: 09XXXXXXXXX or +639XXXXXXXXX
	rePHMobile = regexp.MustCompile(`^(09|\+639)\d{9}$`)
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePostal   = regexp.MustCompile(`^[0-9]{4}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Phone accepts Philippine mobile numbers, tolerating spaces and dashes.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
	if compact == "" {
		return "", false
	}
	return compact, rePHMobile.MatchString(compact)
}

// GCashNumber uses the same pattern as Phone; GCash accounts are keyed to a
// Philippine mobile number.
func GCashNumber(s string) (string, bool) { return Phone(s) }

// Name validates a displayable customer name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, true
}

// ID validates a simple resource identifier (part/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Postal(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePostal.MatchString(s)
}

// CardNumber runs a Luhn check over a 12-19 digit PAN.
func CardNumber(s string) bool {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if len(digits) < 12 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Qty clamps a requested line quantity into a sane range; zero means invalid.
func Qty(n int) int {
	if n < 1 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

package checkout

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	ErrInvalidAddress     = errors.New("invalid delivery address")
	ErrInvalidTaxID       = errors.New("invalid tax id")
	ErrNoShippingSelected = errors.New("no shipping option selected")
	ErrInvalidCardNumber  = errors.New("invalid card number")
	ErrInvalidCardHolder  = errors.New("invalid cardholder name")
	ErrCardExpired        = errors.New("card expiry must be in the future")
	ErrInvalidCVV         = errors.New("invalid cvv")
)

type Address struct {
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	Zip        string
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ValidateAddress(a Address) error {
	if strings.TrimSpace(a.Street) == "" ||
		strings.TrimSpace(a.Number) == "" ||
		strings.TrimSpace(a.City) == "" {
		return ErrInvalidAddress
	}
	if len(strings.TrimSpace(a.State)) != 2 {
		return ErrInvalidAddress
	}
	if len(onlyDigits(a.Zip)) != 8 {
		return ErrInvalidAddress
	}
	return nil
}

// ValidateTaxID checks the CPF checksum: eleven digits, not all equal, two
// mod-11 verification digits.
func ValidateTaxID(s string) error {
	d := onlyDigits(s)
	if len(d) != 11 {
		return ErrInvalidTaxID
	}

	same := true
	for i := 1; i < 11; i++ {
		if d[i] != d[0] {
			same = false
			break
		}
	}
	if same {
		return ErrInvalidTaxID
	}

	for t := 9; t < 11; t++ {
		sum := 0
		for i := 0; i < t; i++ {
			sum += int(d[i]-'0') * (t + 1 - i)
		}
		check := sum * 10 % 11 % 10
		if check != int(d[t]-'0') {
			return ErrInvalidTaxID
		}
	}
	return nil
}

// Luhn reports whether the card number passes the Luhn check. Spaces and
// dashes are ignored.
func Luhn(number string) bool {
	d := onlyDigits(number)
	if len(d) < 13 || len(d) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(d) - 1; i >= 0; i-- {
		n := int(d[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

func validateCardHolder(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 5 || !strings.Contains(name, " ") {
		return ErrInvalidCardHolder
	}
	return nil
}

func validateExpiry(month, year int, now time.Time) error {
	if month < 1 || month > 12 {
		return ErrCardExpired
	}
	if year < 100 {
		year += 2000
	}
	// valid through the last instant of the expiry month
	endOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !now.Before(endOfMonth) {
		return ErrCardExpired
	}
	return nil
}

func validateCVV(cvv string) error {
	d := onlyDigits(cvv)
	if len(d) != len(cvv) || len(d) < 3 || len(d) > 4 {
		return ErrInvalidCVV
	}
	return nil
}

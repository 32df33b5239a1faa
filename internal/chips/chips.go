// Package chips implements fixed-point money for everything that is settled.
//
// An Amount counts the smallest indivisible unit of the table currency
// (cents for cash games, whole chips for tournaments). Binary floating point
// is never used for balances, bets, pots or rake.
package chips

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a quantity of the smallest currency unit.
type Amount int64

// BasisPoints expresses a rate in hundredths of a percent (500 = 5%).
type BasisPoints int64

// FullRate is 100% expressed in basis points.
const FullRate BasisPoints = 10_000

// ErrInvalidAmount is returned when text cannot be parsed as an Amount.
var ErrInvalidAmount = errors.New("invalid amount")

// MulRate returns a*rate rounded down to the nearest unit.
func (a Amount) MulRate(rate BasisPoints) Amount {
	if a <= 0 || rate <= 0 {
		return 0
	}
	return a * Amount(rate) / Amount(FullRate)
}

// Split divides a into n equal shares and returns the share and the
// undistributed remainder.
func (a Amount) Split(n int) (share, remainder Amount) {
	if n <= 0 {
		return 0, a
	}
	return a / Amount(n), a % Amount(n)
}

// String formats the amount as a bare integer of units.
func (a Amount) String() string {
	return strconv.FormatInt(int64(a), 10)
}

// Format renders the amount with the given number of decimal places,
// e.g. Format(1234, 2) == "12.34".
func (a Amount) Format(decimals int) string {
	if decimals <= 0 {
		return a.String()
	}
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	scale := pow10(decimals)
	return fmt.Sprintf("%s%d.%0*d", sign, v/scale, decimals, v%scale)
}

// Parse reads a decimal string into units with the given number of decimal
// places. More fractional digits than decimals is an error; nothing is rounded.
func Parse(s string, decimals int) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(frac) > decimals {
		return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	digits := whole + frac
	if digits == "" {
		digits = "0"
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || strings.ContainsAny(digits, "+-") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if neg {
		v = -v
	}
	return Amount(v), nil
}

// Sum adds all amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

package asset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxPrecision bounds the number of decimal places a symbol may carry.
	MaxPrecision = 18

	maxSymbolLen = 7
)

var (
	// ErrInvalid indicates a malformed amount, symbol, or precision.
	ErrInvalid = errors.New("invalid asset")

	// ErrSymbolMismatch occurs when two assets with different symbols are combined.
	ErrSymbolMismatch = errors.New("asset symbol mismatch")
)

// Asset is a tagged amount: an integer quantity in minor units plus the
// currency symbol and its fixed decimal precision. An Asset's amount may be
// negative; callers enforce their own sign constraints.
type Asset struct {
	Amount    int64
	Symbol    string
	Precision uint8
}

// New returns an asset for the given minor-unit amount.
func New(amount int64, symbol string, precision uint8) Asset {
	return Asset{Amount: amount, Symbol: symbol, Precision: precision}
}

// Parse reads the canonical "12.3400 SYS" form. The number of digits after
// the decimal point fixes the precision; a missing fraction means precision
// zero.
func Parse(s string) (Asset, error) {
	qty, symbol, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q missing symbol", ErrInvalid, s)
	}
	if err := checkSymbol(symbol); err != nil {
		return Asset{}, err
	}

	whole, frac, hasFrac := strings.Cut(qty, ".")
	negative := strings.HasPrefix(whole, "-")
	if negative {
		whole = whole[1:]
	}
	if whole == "" {
		return Asset{}, fmt.Errorf("%w: %q has no integer part", ErrInvalid, s)
	}

	precision := uint8(0)
	digits := whole
	if hasFrac {
		if frac == "" || len(frac) > MaxPrecision {
			return Asset{}, fmt.Errorf("%w: %q has a bad fractional part", ErrInvalid, s)
		}
		precision = uint8(len(frac))
		digits += frac
	}

	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}
	if negative {
		amount = -amount
	}

	return Asset{Amount: amount, Symbol: symbol, Precision: precision}, nil
}

// IsValid reports whether the symbol and precision are well formed. It says
// nothing about the sign of the amount.
func (a Asset) IsValid() bool {
	return checkSymbol(a.Symbol) == nil && a.Precision <= MaxPrecision
}

// Matches reports whether b carries the same symbol and precision.
func (a Asset) Matches(b Asset) bool {
	return a.Symbol == b.Symbol && a.Precision == b.Precision
}

// Add returns a+b. The symbols must match.
func (a Asset) Add(b Asset) (Asset, error) {
	if !a.Matches(b) {
		return Asset{}, fmt.Errorf("%w: %s vs %s", ErrSymbolMismatch, a.Symbol, b.Symbol)
	}
	a.Amount += b.Amount
	return a, nil
}

// Sub returns a-b. The symbols must match.
func (a Asset) Sub(b Asset) (Asset, error) {
	if !a.Matches(b) {
		return Asset{}, fmt.Errorf("%w: %s vs %s", ErrSymbolMismatch, a.Symbol, b.Symbol)
	}
	a.Amount -= b.Amount
	return a, nil
}

// String renders the canonical "12.3400 SYS" form.
func (a Asset) String() string {
	amount := a.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if a.Precision == 0 {
		return fmt.Sprintf("%s%d %s", sign, amount, a.Symbol)
	}
	digits := strconv.FormatInt(amount, 10)
	if len(digits) <= int(a.Precision) {
		digits = strings.Repeat("0", int(a.Precision)-len(digits)+1) + digits
	}
	split := len(digits) - int(a.Precision)
	return fmt.Sprintf("%s%s.%s %s", sign, digits[:split], digits[split:], a.Symbol)
}

func checkSymbol(symbol string) error {
	if symbol == "" || len(symbol) > maxSymbolLen {
		return fmt.Errorf("%w: bad symbol %q", ErrInvalid, symbol)
	}
	for _, r := range symbol {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: bad symbol %q", ErrInvalid, symbol)
		}
	}
	return nil
}

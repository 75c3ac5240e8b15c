package validation

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/diewo77/go-users/i18n"
)

// PasswordRule configures the strength checks of a Password rule.
type PasswordRule struct {
	Min           int
	MixedCase     bool
	Numbers       bool
	Symbols       bool
	Uncompromised bool
}

func (p PasswordRule) check(ctx context.Context, field, plain string, breach BreachChecker, v Violations) error {
	if p.Min > 0 && utf8.RuneCountInString(plain) < p.Min {
		v.Add(field, i18n.Tc(ctx, "min.string", p.Min))
	}

	var upper, lower, digit, symbol bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			symbol = true
		}
	}
	if p.MixedCase && !(upper && lower) {
		v.Add(field, i18n.Tc(ctx, "password.mixed"))
	}
	if p.Numbers && !digit {
		v.Add(field, i18n.Tc(ctx, "password.numbers"))
	}
	if p.Symbols && !symbol {
		v.Add(field, i18n.Tc(ctx, "password.symbols"))
	}

	if p.Uncompromised && breach != nil {
		leaked, err := breach.IsCompromised(ctx, plain)
		if err != nil {
			return fmt.Errorf("validation: breach check: %w", err)
		}
		if leaked {
			v.Add(field, i18n.Tc(ctx, "password.uncompromised"))
		}
	}
	return nil
}

package pricing

import (
	"errors"
	"strings"
	"time"

	"shipcalc/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// PromotionKind says how a promotion reduces the price.
type PromotionKind string

const (
	PromotionPercentage  PromotionKind = "percentage"
	PromotionFixedAmount PromotionKind = "fixed_amount"
)

// Promotion is a discount unlocked by a code. Stackable promotions combine
// with each other; an exclusive one only ever applies alone.
type Promotion struct {
	Code          string
	Name          string
	Kind          PromotionKind
	Value         decimal.Decimal
	Stackable     bool
	Priority      int
	ValidFrom     time.Time
	ValidTo       time.Time
	MinOrderValue decimal.Decimal
}

func (p Promotion) Validate() error {
	var promoErrs []error
	if strings.TrimSpace(p.Code) == "" {
		promoErrs = append(promoErrs, errs.NewValueIsRequiredError("promotion code"))
	}
	switch p.Kind {
	case PromotionPercentage:
		promoErrs = append(promoErrs, percentInRange("value", p.Value))
	case PromotionFixedAmount:
		promoErrs = append(promoErrs, nonNegative("value", p.Value))
	default:
		promoErrs = append(promoErrs, errs.NewValueIsInvalidError("promotion kind "+string(p.Kind)))
	}
	if !p.ValidTo.IsZero() && !p.ValidTo.After(p.ValidFrom) {
		promoErrs = append(promoErrs, errs.NewValueIsInvalidError("promotion must end after it starts"))
	}
	promoErrs = append(promoErrs, nonNegative("min_order_value", p.MinOrderValue))
	if err := errors.Join(promoErrs...); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("promotion "+p.Code, err)
	}
	return nil
}

// ActiveAt reports whether t lies in [ValidFrom, ValidTo). A zero ValidTo never expires.
func (p Promotion) ActiveAt(t time.Time) bool {
	if t.Before(p.ValidFrom) {
		return false
	}
	return p.ValidTo.IsZero() || t.Before(p.ValidTo)
}

// Discount returns how much the promotion takes off price, never more than price.
func (p Promotion) Discount(price decimal.Decimal) decimal.Decimal {
	var off decimal.Decimal
	switch p.Kind {
	case PromotionPercentage:
		off = Percentage(price, p.Value)
	case PromotionFixedAmount:
		off = p.Value
	}
	return decimal.Min(off, decimal.Max(price, decimal.Zero))
}

package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/quote"

	"github.com/shopspring/decimal"
)

// PromotionRuleID prefixes promotion codes in the rule trail.
const PromotionRuleID = "promotion:"

// PromotionCombiner chooses which of the customer's promotions apply.
//
// Business rules:
//   - promotions not valid at the as-of time, or below their minimum order value, are skipped with a warning
//   - stackable promotions form one candidate and apply cumulatively in ascending priority, then code
//   - every exclusive promotion is a candidate on its own
//   - the candidate with the lowest resulting price wins; ties prefer the stack,
//     then the lower priority, then the code
//   - a discount never takes the price below zero
type PromotionCombiner struct{}

func NewPromotionCombiner() PromotionCombiner {
	return PromotionCombiner{}
}

type promotionCandidate struct {
	promotions []pricing.Promotion
	discounts  []decimal.Decimal
	price      decimal.Decimal
}

// CombinePromotions evaluates the promotions against price. In the returned
// result Promotions holds the total discount and FinalPrice the price after it.
func (PromotionCombiner) CombinePromotions(
	promotions []pricing.Promotion,
	ctx quote.RuleContext,
	price decimal.Decimal,
) quote.RuleResult {
	result := quote.RuleResult{FinalPrice: price, Currency: ctx.Currency}

	var stackable, exclusive []pricing.Promotion
	for _, p := range promotions {
		switch {
		case !p.ActiveAt(ctx.AsOf):
			result.Warn(fmt.Sprintf("promotion %s ignored: not valid at %s", p.Code, ctx.AsOf.Format("2006-01-02")))
		case price.LessThan(p.MinOrderValue):
			result.Warn(fmt.Sprintf("promotion %s ignored: order value %s below minimum %s",
				p.Code, price.StringFixed(ctx.Currency.Scale()), p.MinOrderValue))
		case p.Stackable:
			stackable = append(stackable, p)
		default:
			exclusive = append(exclusive, p)
		}
	}

	byPriority := func(a, b pricing.Promotion) int {
		return cmp.Or(cmp.Compare(a.Priority, b.Priority), strings.Compare(a.Code, b.Code))
	}
	slices.SortFunc(stackable, byPriority)
	slices.SortFunc(exclusive, byPriority)

	var candidates []promotionCandidate
	if len(stackable) > 0 {
		candidates = append(candidates, apply(stackable, price))
	}
	for _, p := range exclusive {
		candidates = append(candidates, apply([]pricing.Promotion{p}, price))
	}
	if len(candidates) == 0 {
		return result
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.price.LessThan(best.price) {
			best = c
		}
	}

	for i, p := range best.promotions {
		result.Record(quote.StagePromotion, PromotionRuleID+p.Code, best.discounts[i].Neg(), describePromotion(p))
	}
	for _, c := range candidates {
		if c.promotions[0].Code == best.promotions[0].Code {
			continue
		}
		for _, p := range c.promotions {
			result.Warn(fmt.Sprintf("promotion %s not applied: a better combination was chosen", p.Code))
		}
	}

	result.Promotions = price.Sub(best.price)
	result.FinalPrice = best.price
	return result
}

func apply(promotions []pricing.Promotion, price decimal.Decimal) promotionCandidate {
	c := promotionCandidate{promotions: promotions, price: price}
	for _, p := range promotions {
		off := p.Discount(c.price)
		c.discounts = append(c.discounts, off)
		c.price = c.price.Sub(off)
	}
	return c
}

func describePromotion(p pricing.Promotion) string {
	if p.Kind == pricing.PromotionPercentage {
		return fmt.Sprintf("%s%% off", p.Value)
	}
	return fmt.Sprintf("%s off", p.Value)
}

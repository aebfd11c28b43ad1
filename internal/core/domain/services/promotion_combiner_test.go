package services_test

import (
	"testing"

	"shipcalc/internal/core/domain/model/catalog/catalogtest"
	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promotions(t *testing.T, codes ...string) []pricing.Promotion {
	t.Helper()
	s := catalogtest.Snapshot(t)
	out := make([]pricing.Promotion, 0, len(codes))
	for _, code := range codes {
		p, ok := s.Promotion(code)
		require.True(t, ok, code)
		out = append(out, p)
	}
	return out
}

func promoContext(t *testing.T) quote.RuleContext {
	t.Helper()
	pln, err := kernel.ParseCurrency("PLN")
	require.NoError(t, err)
	return quote.RuleContext{Currency: pln, AsOf: catalogtest.AsOf}
}

func TestPromotionCombiner_CombinePromotions(t *testing.T) {
	combiner := services.NewPromotionCombiner()
	ctx := promoContext(t)

	t.Run("stackable promotions apply cumulatively in priority order", func(t *testing.T) {
		result := combiner.CombinePromotions(promotions(t, "EXTRA2", "WELCOME10"), ctx, d("20"))

		assert.True(t, d("16").Equal(result.FinalPrice), result.FinalPrice.String())
		assert.True(t, d("4").Equal(result.Promotions))
		assert.Equal(t, []string{"promotion:WELCOME10", "promotion:EXTRA2"}, result.AppliedRules)
		assert.True(t, d("-2").Equal(result.Adjustments[0].Amount))
		assert.True(t, d("-2").Equal(result.Adjustments[1].Amount))
	})

	t.Run("a better exclusive promotion beats the stack", func(t *testing.T) {
		result := combiner.CombinePromotions(promotions(t, "WELCOME10", "EXTRA2", "HALF"), ctx, d("120"))

		assert.True(t, d("60").Equal(result.FinalPrice))
		assert.Equal(t, []string{"promotion:HALF"}, result.AppliedRules)
		assert.Len(t, result.Warnings, 2)
	})

	t.Run("minimum order value is enforced", func(t *testing.T) {
		result := combiner.CombinePromotions(promotions(t, "WELCOME10", "EXTRA2", "HALF", "FLAT5"), ctx, d("20"))

		assert.True(t, d("15").Equal(result.FinalPrice), "FLAT5 (15) beats the stack (16)")
		assert.Equal(t, []string{"promotion:FLAT5"}, result.AppliedRules)
		assert.Contains(t, result.Warnings[0], "HALF ignored")
	})

	t.Run("ties prefer the stack", func(t *testing.T) {
		result := combiner.CombinePromotions(promotions(t, "EXTRA2", "FLAT5"), ctx, d("10"))
		assert.True(t, d("5").Equal(result.FinalPrice))
		assert.Equal(t, []string{"promotion:FLAT5"}, result.AppliedRules)

		tie := combiner.CombinePromotions(promotions(t, "WELCOME10", "FLAT5"), ctx, d("50"))
		assert.True(t, d("45").Equal(tie.FinalPrice))
		assert.Equal(t, []string{"promotion:WELCOME10"}, tie.AppliedRules)
	})

	t.Run("expired promotion is ignored with a warning", func(t *testing.T) {
		result := combiner.CombinePromotions(promotions(t, "SPRING"), ctx, d("20"))

		assert.True(t, d("20").Equal(result.FinalPrice))
		assert.Empty(t, result.AppliedRules)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "SPRING ignored")
	})

	t.Run("discount never exceeds the price", func(t *testing.T) {
		result := combiner.CombinePromotions(promotions(t, "FLAT5"), ctx, d("3"))
		assert.True(t, result.FinalPrice.IsZero())
	})
}

package model

import (
	"math"
	"sort"
)

// MarketValue picks the best available market price for a card in USD.
// TCGplayer markets are tried in order of likeliest printing buckets; if
// none carries a positive market figure we fall back to Cardmarket's EUR
// trend price (reported as-is, source tells the caller which it was).
func (c *Card) MarketValue() (value float64, source string) {
	if c == nil {
		return 0, ""
	}
	if c.TCGPlayer != nil && c.TCGPlayer.Prices != nil {
		variantOrder := []string{"normal", "holofoil", "reverseHolofoil", "1stEditionHolofoil", "1stEditionNormal"}
		for _, v := range variantOrder {
			if p, ok := c.TCGPlayer.Prices[v]; ok && p.Market != nil && *p.Market > 0 {
				return round2(*p.Market), "tcgplayer.market"
			}
		}
		// Unusual printings (e.g. "unlimitedHolofoil") still beat no price.
		rest := make([]string, 0, len(c.TCGPlayer.Prices))
		for v := range c.TCGPlayer.Prices {
			rest = append(rest, v)
		}
		sort.Strings(rest)
		for _, v := range rest {
			if p := c.TCGPlayer.Prices[v]; p.Market != nil && *p.Market > 0 {
				return round2(*p.Market), "tcgplayer.market." + v
			}
		}
	}
	if c.Cardmarket != nil && c.Cardmarket.Prices.TrendPrice != nil && *c.Cardmarket.Prices.TrendPrice > 0 {
		return round2(*c.Cardmarket.Prices.TrendPrice), "cardmarket.trend"
	}
	return 0, ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

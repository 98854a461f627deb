package analytics

// NetWorth sums assets and liabilities and derives the allocation percent of
// each asset. With zero total assets every allocation percent is 0.
func (a *Analyzer) NetWorth(assets, liabilities map[string]float64) NetWorthSummary {
	var totalAssets, totalLiabilities float64
	for _, amount := range assets {
		totalAssets += amount
	}
	for _, amount := range liabilities {
		totalLiabilities += amount
	}

	allocation := make(map[string]float64, len(assets))
	for asset, amount := range assets {
		if totalAssets > 0 {
			allocation[asset] = amount / totalAssets * 100
		} else {
			allocation[asset] = 0
		}
	}

	return NetWorthSummary{
		TotalAssets:      totalAssets,
		TotalLiabilities: totalLiabilities,
		NetWorth:         totalAssets - totalLiabilities,
		AssetAllocation:  allocation,
	}
}

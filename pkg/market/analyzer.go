package market

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"osrs-toolkit/pkg/ge"

	"github.com/sirupsen/logrus"
)

// Analyzer filters and ranks the full item catalog into a profit
// opportunity list for one strategy and risk profile. Each Analyze call
// pulls fresh price and volume snapshots; only the catalog behind the
// data source may be cached.
type Analyzer struct {
	source ge.DataSource
	tuning Tuning
	log    *logrus.Entry
	now    func() time.Time
}

// NewAnalyzer creates an analyzer over the given data source
func NewAnalyzer(source ge.DataSource, tuning Tuning, log *logrus.Entry) *Analyzer {
	return &Analyzer{
		source: source,
		tuning: tuning,
		log:    log,
		now:    time.Now,
	}
}

// Analyze runs the filter pipeline over every catalog item and returns the
// ranked result. Any feed failure fails the whole call; an empty result
// list is not an error.
func (a *Analyzer) Analyze(ctx context.Context, settings Settings) (*Report, error) {
	catalog, err := a.source.ItemCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching item catalog: %v", ErrDataUnavailable, err)
	}
	quotes, err := a.source.LatestPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching price snapshot: %v", ErrDataUnavailable, err)
	}
	volumes, err := a.source.DayVolumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching volume snapshot: %v", ErrDataUnavailable, err)
	}

	now := a.now()
	natPrice := a.natureRunePrice(quotes)
	nameFilter := strings.ToLower(strings.TrimSpace(settings.NameFilter))

	var items []Opportunity
	for _, item := range catalog {
		opp, ok := a.evaluate(item, quotes, volumes, settings, nameFilter, natPrice, now)
		if ok {
			items = append(items, opp)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].HourlyProfitEstimate > items[j].HourlyProfitEstimate
	})

	candidates := len(items)
	if settings.ResultCount > 0 && len(items) > settings.ResultCount {
		items = items[:settings.ResultCount]
	}

	topName := "None"
	if len(items) > 0 {
		topName = items[0].Name
	}
	summary := fmt.Sprintf("Scanned %d items, %d candidates. Top: %s", len(catalog), candidates, topName)

	if a.log != nil {
		a.log.WithFields(logrus.Fields{
			"strategy":   settings.Strategy,
			"risk":       settings.Risk,
			"catalog":    len(catalog),
			"candidates": candidates,
		}).Debug("Analysis complete")
	}

	return &Report{
		Summary:     summary,
		Items:       items,
		Strategy:    settings.Strategy,
		CatalogSize: len(catalog),
		GeneratedAt: now,
	}, nil
}

// evaluate runs the per-item admissibility and scoring pipeline. The
// filter order is load-bearing: every guard that prevents a later division
// or nil dereference runs before the computation it protects.
func (a *Analyzer) evaluate(item ge.ItemMapping, quotes map[int]ge.PriceQuote, volumes map[int]ge.VolumeSample, settings Settings, nameFilter string, natPrice int, now time.Time) (Opportunity, bool) {
	nameSearch := nameFilter != ""

	// 1. name substring filter
	if nameSearch && !strings.Contains(strings.ToLower(item.Name), nameFilter) {
		return Opportunity{}, false
	}

	// 2. quote and trade limit must exist; a zero/unknown limit marks the
	// item as untradeable or data-quality-suspect
	quote, ok := quotes[item.ID]
	if !ok || item.BuyLimit <= 0 {
		return Opportunity{}, false
	}
	if quote.High == nil || quote.Low == nil || quote.HighTime == nil || quote.LowTime == nil {
		return Opportunity{}, false
	}

	// 3. both sides of the quote must be fresh
	cutoff := int(now.Add(-a.tuning.StalenessWindow).Unix())
	if *quote.HighTime < cutoff || *quote.LowTime < cutoff {
		return Opportunity{}, false
	}

	// 4. membership gate
	if settings.Membership == MembershipF2P && item.Members {
		return Opportunity{}, false
	}

	// 5. affordability gate; budget 0 means unbounded, and name searches
	// show the item regardless
	ask := *quote.Low
	if !nameSearch && settings.BudgetGP > 0 && ask > settings.BudgetGP {
		return Opportunity{}, false
	}

	// 6. strategy economics
	var buyPrice, sellPrice, profit int
	var roiBase int
	switch settings.Strategy {
	case StrategyAlch:
		if item.HighAlch <= 0 {
			return Opportunity{}, false
		}
		buyPrice = *quote.High
		sellPrice = item.HighAlch
		cost := buyPrice + natPrice
		profit = item.HighAlch - cost
		roiBase = cost
	default: // StrategyFlip
		buyPrice = ask
		sellPrice = *quote.High
		if sellPrice > a.tuning.MaxSpreadMultiple*buyPrice {
			// suspiciously wide spread signals a dead or manipulated
			// market, not an opportunity
			return Opportunity{}, false
		}
		tax := sellPrice / 100
		if tax > a.tuning.TaxCapGP {
			tax = a.tuning.TaxCapGP
		}
		profit = (sellPrice - buyPrice) - tax
		roiBase = buyPrice
	}

	// 7. must actually profit
	if profit <= 0 || roiBase <= 0 {
		return Opportunity{}, false
	}
	roi := float64(profit) / float64(roiBase) * 100

	// 8. minimum ROI, flip strategy only, waived for name searches
	if settings.Strategy != StrategyAlch && !nameSearch && roi < a.tuning.MinROIPercent {
		return Opportunity{}, false
	}

	// 9. risk liquidity gate, flip strategy only
	if settings.Strategy != StrategyAlch && item.BuyLimit < a.tuning.minTradeLimit(settings.Risk) {
		return Opportunity{}, false
	}

	// 10. hourly throughput: capped by the slower side of the book, the
	// exchange limit window, and what the budget can buy
	sample := volumes[item.ID]
	volume24h := sample.HighPriceVolume + sample.LowPriceVolume
	buyRate := float64(sample.LowPriceVolume) / 24
	sellRate := float64(sample.HighPriceVolume) / 24
	effectiveRate := math.Min(buyRate, sellRate)
	geLimitPerHour := float64(item.BuyLimit) / float64(a.tuning.GELimitWindowHours)
	maxAffordable := math.Inf(1)
	if settings.BudgetGP > 0 {
		maxAffordable = math.Floor(float64(settings.BudgetGP) / float64(buyPrice))
	}
	throughput := math.Min(math.Min(effectiveRate, geLimitPerHour), maxAffordable)
	hourly := float64(profit) * throughput

	// 11. trend vs the 24h rolling averages
	trend := a.classifyTrend(quote, sample)

	// 12. emit
	opp := Opportunity{
		ItemID:               item.ID,
		Name:                 item.Name,
		BuyPrice:             buyPrice,
		SellPrice:            sellPrice,
		ProfitPerUnit:        profit,
		TradeLimit:           item.BuyLimit,
		ROIPercent:           roi,
		Volume24h:            volume24h,
		VolumeHigh:           sample.HighPriceVolume,
		VolumeLow:            sample.LowPriceVolume,
		BuyRatePerHour:       buyRate,
		SellRatePerHour:      sellRate,
		HourlyProfitEstimate: hourly,
		Trend:                trend,
		GuidePrice:           item.Value,
	}
	opp.Description = a.describe(opp, settings.Strategy, natPrice)

	return opp, true
}

// classifyTrend averages the percentage deviation of each quote side from
// its 24h mean. Missing averages classify as stable.
func (a *Analyzer) classifyTrend(quote ge.PriceQuote, sample ge.VolumeSample) Trend {
	if sample.AvgHighPrice == nil || sample.AvgLowPrice == nil || *sample.AvgHighPrice <= 0 || *sample.AvgLowPrice <= 0 {
		return TrendStable
	}

	devHigh := (float64(*quote.High) - float64(*sample.AvgHighPrice)) / float64(*sample.AvgHighPrice) * 100
	devLow := (float64(*quote.Low) - float64(*sample.AvgLowPrice)) / float64(*sample.AvgLowPrice) * 100
	avg := (devHigh + devLow) / 2

	switch {
	case avg > a.tuning.TrendThresholdPct:
		return TrendUp
	case avg < -a.tuning.TrendThresholdPct:
		return TrendDown
	default:
		return TrendStable
	}
}

// natureRunePrice resolves the rune cost from the same price snapshot,
// preferring the instant-buy side, with a fixed fallback when the rune has
// no fresh quote.
func (a *Analyzer) natureRunePrice(quotes map[int]ge.PriceQuote) int {
	quote, ok := quotes[a.tuning.NatureRuneItemID]
	if ok {
		if quote.High != nil {
			return *quote.High
		}
		if quote.Low != nil {
			return *quote.Low
		}
	}
	return a.tuning.NatureRuneFallbackGP
}

func (a *Analyzer) describe(opp Opportunity, strategy Strategy, natPrice int) string {
	if strategy == StrategyAlch {
		return fmt.Sprintf("Buy at %d gp, high alch for %d gp. %d gp per cast after a %d gp nature rune (%.1f%% ROI).",
			opp.BuyPrice, opp.SellPrice, opp.ProfitPerUnit, natPrice, opp.ROIPercent)
	}
	return fmt.Sprintf("Buy at %d gp, sell at %d gp. %d gp per unit after tax (%.1f%% ROI), limit %d per 4h.",
		opp.BuyPrice, opp.SellPrice, opp.ProfitPerUnit, opp.ROIPercent, opp.TradeLimit)
}

package market

import (
	"errors"
	"time"
)

// ErrDataUnavailable wraps any feed failure. The whole analysis fails,
// no partial results.
var ErrDataUnavailable = errors.New("market data unavailable")

// Strategy selects how profit is computed for a candidate
type Strategy string

const (
	// StrategyFlip buys at the low side and resells at the high side,
	// paying the exchange tax on the sale.
	StrategyFlip Strategy = "flip"

	// StrategyAlch buys at the high side and converts via High Level
	// Alchemy, spending one nature rune per cast.
	StrategyAlch Strategy = "alch"
)

// Risk gates candidates by trade-limit liquidity
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Membership filters the catalog by account type
type Membership string

const (
	MembershipAll Membership = "all"
	MembershipF2P Membership = "f2p"
)

// Trend classifies where current prices sit against the 24h averages
type Trend string

const (
	TrendUp     Trend = "UP"
	TrendDown   Trend = "DOWN"
	TrendStable Trend = "STABLE"
)

// Settings parameterize one analysis run
type Settings struct {
	BudgetGP    int
	Membership  Membership
	Risk        Risk
	Strategy    Strategy
	NameFilter  string
	ResultCount int
}

// Opportunity is one admissible item with its derived economics.
// Never mutated after creation; each run produces a fresh list.
type Opportunity struct {
	ItemID               int
	Name                 string
	BuyPrice             int
	SellPrice            int
	ProfitPerUnit        int
	TradeLimit           int
	ROIPercent           float64
	Volume24h            int
	VolumeHigh           int
	VolumeLow            int
	BuyRatePerHour       float64
	SellRatePerHour      float64
	HourlyProfitEstimate float64
	Trend                Trend
	GuidePrice           int
	Description          string
}

// Report is the result of one analysis run
type Report struct {
	Summary     string
	Items       []Opportunity
	Strategy    Strategy
	CatalogSize int
	GeneratedAt time.Time
}

// Tuning holds the analyzer constants as configuration-with-defaults.
// Defaults preserve the live exchange's behavior; override with care.
type Tuning struct {
	StalenessWindow      time.Duration
	TaxCapGP             int
	MaxSpreadMultiple    int
	MinROIPercent        float64
	RiskLimitLow         int
	RiskLimitMedium      int
	NatureRuneItemID     int
	NatureRuneFallbackGP int
	GELimitWindowHours   int
	TrendThresholdPct    float64
}

// DefaultTuning returns the standard constants
func DefaultTuning() Tuning {
	return Tuning{
		StalenessWindow:      3600 * time.Second,
		TaxCapGP:             5_000_000,
		MaxSpreadMultiple:    3,
		MinROIPercent:        1.0,
		RiskLimitLow:         500,
		RiskLimitMedium:      50,
		NatureRuneItemID:     561,
		NatureRuneFallbackGP: 200,
		GELimitWindowHours:   4,
		TrendThresholdPct:    3.0,
	}
}

// minTradeLimit returns the liquidity floor for a risk level.
// Alching flips nothing back to the market, so the gate only applies
// to the flip strategy.
func (t Tuning) minTradeLimit(risk Risk) int {
	switch risk {
	case RiskLow:
		return t.RiskLimitLow
	case RiskMedium:
		return t.RiskLimitMedium
	default:
		return 0
	}
}

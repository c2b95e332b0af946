package ge

// LatestPricesResponse matches the RuneScape Wiki /latest response structure
type LatestPricesResponse struct {
	Data map[string]PriceQuote `json:"data"`
}

/*

The OSRS price API is counterintuitive to normal trading terminology:

`high` = insta_buy_price = price where buy orders get filled instantly
`low`  = insta_sell_price = price where sell orders get filled instantly

A flip buys at the low side and sells at the high side, so for flipping
purposes `low` is the ask we pay and `high` is the bid we receive.

*/

type PriceQuote struct {
	High     *int `json:"high"`     // insta_buy_price
	HighTime *int `json:"highTime"` // last_insta_buy_time (unix seconds)
	Low      *int `json:"low"`      // insta_sell_price
	LowTime  *int `json:"lowTime"`  // last_insta_sell_time (unix seconds)
}

// ItemMapping represents item metadata from the /mapping endpoint
type ItemMapping struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Examine  string `json:"examine"`
	Members  bool   `json:"members"`
	BuyLimit int    `json:"limit"`
	Value    int    `json:"value"`
	HighAlch int    `json:"highalch"`
	LowAlch  int    `json:"lowalch"`
	Icon     string `json:"icon"`
}

// VolumeSample is one item's slice of the /24h bulk response: rolling
// average prices plus traded unit counts on each side of the book.
type VolumeSample struct {
	AvgHighPrice    *int `json:"avgHighPrice"`
	HighPriceVolume int  `json:"highPriceVolume"`
	AvgLowPrice     *int `json:"avgLowPrice"`
	LowPriceVolume  int  `json:"lowPriceVolume"`
}

// DayVolumesResponse matches the /24h bulk response structure
type DayVolumesResponse struct {
	Data      map[string]VolumeSample `json:"data"`
	Timestamp int64                   `json:"timestamp"`
}

package entity

import "time"

// Granularity はローソク足の集計期間です。
type Granularity string

const (
	GranularityMinute Granularity = "minute"
	GranularityHour   Granularity = "hour"
)

// Period は1本のローソク足が表す時間幅を返します。
func (g Granularity) Period() time.Duration {
	switch g {
	case GranularityMinute:
		return time.Minute
	case GranularityHour:
		return time.Hour
	default:
		return 0
	}
}

// Valid は既知の集計期間かどうかを返します。
func (g Granularity) Valid() bool {
	return g == GranularityMinute || g == GranularityHour
}

// Candle は1観測分のOHLCVデータです。
// (Exchange, Symbol, Time) が自然な重複排除キーになります。
type Candle struct {
	Time     time.Time // UTC、分精度
	Open     float64
	Close    float64
	High     float64
	Low      float64
	Volume   float64
	Symbol   string
	Exchange string
}

// TruncDay は時刻をUTCの日境界に切り捨てます。
func TruncDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

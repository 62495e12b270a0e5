package entity

import "time"

// DailyExtreme の種別です。
const (
	ExtremeMin = "min"
	ExtremeMax = "max"
)

// DailyExtreme は1暦日の最安値側（min）または最高値側（max）のローソク足です。
// 日内をlow_value昇順／high_value降順で順位付けした1位の行に対応します。
type DailyExtreme struct {
	Kind     string
	Time     time.Time
	Open     float64
	Close    float64
	High     float64
	Low      float64
	Volume   float64
	Exchange string
}

package dto

// MinMaxCandleResponse は日次min/maxローソク足のレスポンスDTOです。
// キーの大文字・小文字は既存クライアントとの互換のため混在のままにしています。
type MinMaxCandleResponse struct {
	Type     string  `json:"Type"`     // "min" または "max"
	Time     string  `json:"time"`     // "YYYY-MM-DD HH:MM" UTC
	Close    float64 `json:"close"`    // 終値
	Open     float64 `json:"open"`     // 始値
	High     float64 `json:"high"`     // 高値
	Low      float64 `json:"low"`      // 安値
	Volume   float64 `json:"volume"`   // 出来高
	Exchange string  `json:"Exchange"` // 取引所名
}

// Package di provides dependency injection factories for creating application components.
package di

import (
	"os"
	"strings"
	"time"

	"marketdata_backend/internal/feature/marketdata/adapters/bitfinex"
	"marketdata_backend/internal/feature/marketdata/adapters/kraken"
	"marketdata_backend/internal/feature/marketdata/usecase"
	infrahttp "marketdata_backend/internal/platform/http"
)

// NewExchangeSources creates the configured exchange data sources with a shared HTTP client.
func NewExchangeSources() []usecase.ExchangeSource {
	client := infrahttp.NewHTTPClient(10 * time.Second)

	return []usecase.ExchangeSource{
		bitfinex.NewSource(
			bitfinex.LoadConfig(),
			symbolList("BITFINEX_SYMBOLS", []string{"BTCUSD", "ETHUSD", "XRPEUR", "XRPUSD"}),
			client,
		),
		kraken.NewSource(
			kraken.LoadConfig(),
			symbolList("KRAKEN_SYMBOLS", []string{"XBTUSD", "ETHUSD", "XRPEUR", "XRPUSD"}),
			client,
		),
	}
}

// symbolList は環境変数のカンマ区切りリストを読みます。未指定時は既定値を使います。
func symbolList(env string, def []string) []string {
	raw := os.Getenv(env)
	if raw == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

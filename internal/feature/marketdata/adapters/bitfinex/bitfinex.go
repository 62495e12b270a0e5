// Package bitfinex はBitfinex公開APIからローソク足を取得するデータソースです。
// 1回のAPI呼び出しで要求範囲全体を取得する単発型で、ページングは行いません。
//
// レスポンス形式（/v2/candles/trade:{tf}:t{symbol}/hist）:
//
//	[[MTS, OPEN, CLOSE, HIGH, LOW, VOLUME], ...]
package bitfinex

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"marketdata_backend/internal/feature/marketdata/domain"
	"marketdata_backend/internal/feature/marketdata/domain/entity"

	"context"
)

const (
	exchangeName = "Bitfinex"
	// minuteLimit は分足の全日分（24時間×60本）です。
	minuteLimit = 1440
)

type Config struct {
	BaseURL string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env ファイルが見つかりませんでした")
	}

	base := os.Getenv("BITFINEX_BASE_URL")
	if base == "" {
		base = "https://api-pub.bitfinex.com/v2"
	}
	return Config{BaseURL: base}
}

// Source はBitfinexのデータソースです。
type Source struct {
	cfg     Config
	symbols []string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewSource は指定されたシンボルリストを追跡するSourceを生成します。
func NewSource(cfg Config, symbols []string, client *http.Client) *Source {
	return &Source{
		cfg:     cfg,
		symbols: symbols,
		client:  client,
		// 公開APIのレート制限（30req/分）に収まるよう呼び出しを間引く
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		logger:  slog.Default().With("exchange", exchangeName),
	}
}

func (s *Source) Name() string { return exchangeName }

func (s *Source) Symbols() []string { return s.symbols }

// FetchRange は1シンボル・1粒度の連続した時間範囲のローソク足を取得します。
// minute粒度は呼び出し元のfrom/toを無視して直近のUTC1日分を返します。
// hour粒度はfromが必須で、from >= to の場合はAPIを呼ばずに空を返します。
func (s *Source) FetchRange(ctx context.Context, symbol string, g entity.Granularity, from, to time.Time) ([]entity.Candle, error) {
	var tf string
	var limit int

	switch g {
	case entity.GranularityMinute:
		tf = "1m"
		to = entity.TruncDay(time.Now())
		from = to.AddDate(0, 0, -1)
		limit = minuteLimit
	case entity.GranularityHour:
		tf = "1h"
		if from.IsZero() {
			return nil, domain.ErrMissingRange
		}
		if to.IsZero() {
			to = entity.TruncDay(time.Now())
		}
		if !from.Before(to) {
			return nil, nil
		}
		limit = int(to.Sub(from) / time.Hour)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownGranularity, g)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/candles/trade:%s:t%s/hist?limit=%d&start=%d&end=%d",
		s.cfg.BaseURL, tf, symbol, limit, from.UnixMilli(), to.UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	// [[mts, open, close, high, low, volume], ...]
	var raw [][]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		// 不正・空ペイロードはエラーにせず空結果として扱い、生ペイロードを診断ログに残す
		perr := &domain.SourceParseError{Exchange: exchangeName, Symbol: symbol, Payload: string(body), Err: err}
		s.logger.Error("malformed candle payload", "symbol", symbol, "error", perr, "payload", perr.Payload)
		return nil, nil
	}

	candles := make([]entity.Candle, 0, len(raw))
	for _, r := range raw {
		if len(r) < 6 {
			continue
		}
		candles = append(candles, entity.Candle{
			Time:   time.UnixMilli(int64(r[0])).UTC(),
			Open:   r[1],
			Close:  r[2],
			High:   r[3],
			Low:    r[4],
			Volume: r[5],
		})
	}

	// /histは新しい順で返るため時系列順に並べ直す
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})

	return candles, nil
}

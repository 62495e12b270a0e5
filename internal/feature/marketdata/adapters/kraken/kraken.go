// Package kraken はKraken公開APIからローソク足を取得するデータソースです。
// APIは1回の呼び出しで最大720点しか返さないため、要求範囲をsinceを進めながら
// 複数バッチに分割して取得します。
//
// レスポンス形式（/0/public/OHLC）:
//
//	{"error": [], "result": {"<PAIR>": [[time, "open", "high", "low", "close", "vwap", "volume", count], ...], "last": ...}}
package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"marketdata_backend/internal/feature/marketdata/domain"
	"marketdata_backend/internal/feature/marketdata/domain/entity"
)

const (
	exchangeName = "Kraken"
	// batchLen はAPIが1回の呼び出しで返す最大点数です。
	batchLen = 720
)

type Config struct {
	BaseURL string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env ファイルが見つかりませんでした")
	}

	base := os.Getenv("KRAKEN_BASE_URL")
	if base == "" {
		base = "https://api.kraken.com"
	}
	return Config{BaseURL: base}
}

// Source はKrakenのデータソースです。
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
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  slog.Default().With("exchange", exchangeName),
	}
}

func (s *Source) Name() string { return exchangeName }

func (s *Source) Symbols() []string { return s.symbols }

// batch は1回のAPI呼び出しに対応する取得単位です。
type batch struct {
	since time.Time
	size  int
}

// splitBatches は [from, to) を720点単位のバッチ列に分割します。
// 最後のバッチは残りの点数ちょうどに切り詰められます。
func splitBatches(from, to time.Time, period time.Duration) []batch {
	limit := int(to.Sub(from) / period)
	if limit <= 0 {
		return nil
	}

	var batches []batch
	for i := 0; i*batchLen < limit; i++ {
		size := batchLen
		if rest := limit - i*batchLen; rest < batchLen {
			size = rest
		}
		batches = append(batches, batch{
			since: from.Add(time.Duration(i*batchLen) * period),
			size:  size,
		})
	}
	return batches
}

// FetchRange は1シンボル・1粒度の連続した時間範囲のローソク足を取得します。
// hour粒度はfromが必須で、from >= to の場合はAPIを呼ばずに空を返します。
// バッチ単位のパース失敗は取得済みバッチを巻き込まず、そのバッチが0行になるだけです。
func (s *Source) FetchRange(ctx context.Context, symbol string, g entity.Granularity, from, to time.Time) ([]entity.Candle, error) {
	var interval string

	switch g {
	case entity.GranularityMinute:
		interval = "1"
		to = entity.TruncDay(time.Now())
		from = to.AddDate(0, 0, -1)
	case entity.GranularityHour:
		interval = "60"
		if from.IsZero() {
			return nil, domain.ErrMissingRange
		}
		if to.IsZero() {
			to = entity.TruncDay(time.Now())
		}
		if !from.Before(to) {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownGranularity, g)
	}

	var candles []entity.Candle
	for _, b := range splitBatches(from, to, g.Period()) {
		rows, err := s.fetchBatch(ctx, symbol, interval, b)
		if err != nil {
			// 1バッチの失敗で全体を落とさない。報告して0行扱いで続行する。
			s.logger.Error("batch fetch failed", "symbol", symbol, "since", b.since, "error", err)
			continue
		}
		candles = append(candles, rows...)
	}
	return candles, nil
}

type ohlcResponse struct {
	Error  []string                   `json:"error"`
	Result map[string]json.RawMessage `json:"result"`
}

// fetchBatch は1バッチ分を取得し、時系列昇順に整列してバッチサイズに切り詰めます。
// APIの返却順は保証されないため、整列は切り詰めの前に行う必要があります。
func (s *Source) fetchBatch(ctx context.Context, symbol, interval string, b batch) ([]entity.Candle, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/0/public/OHLC?pair=%s&interval=%s&since=%d",
		s.cfg.BaseURL, symbol, interval, b.since.Unix())

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

	var resp ohlcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.SourceParseError{Exchange: exchangeName, Symbol: symbol, Payload: string(body), Err: err}
	}
	if len(resp.Error) > 0 {
		return nil, fmt.Errorf("%s: api error for %s: %v", exchangeName, symbol, resp.Error)
	}

	rows, err := pairRows(resp.Result)
	if err != nil {
		return nil, &domain.SourceParseError{Exchange: exchangeName, Symbol: symbol, Payload: string(body), Err: err}
	}

	candles := make([]entity.Candle, 0, len(rows))
	for _, r := range rows {
		c, ok := toCandle(r)
		if !ok {
			continue
		}
		candles = append(candles, c)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	if len(candles) > b.size {
		candles = candles[:b.size]
	}
	return candles, nil
}

// pairRows はresultオブジェクトから通貨ペアキーのローソク足配列を取り出します。
// ペアキーの名前は正規化されて返るため、"last"以外の配列値を探します。
func pairRows(result map[string]json.RawMessage) ([][]any, error) {
	for key, raw := range result {
		if key == "last" {
			continue
		}
		var rows [][]any
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode pair %s: %w", key, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("result contains no pair data")
}

// toCandle は [time, "open", "high", "low", "close", "vwap", "volume", count] を変換します。
func toCandle(row []any) (entity.Candle, bool) {
	if len(row) < 7 {
		return entity.Candle{}, false
	}
	ts, ok := asFloat(row[0])
	if !ok {
		return entity.Candle{}, false
	}
	open, ok1 := asFloat(row[1])
	high, ok2 := asFloat(row[2])
	low, ok3 := asFloat(row[3])
	cls, ok4 := asFloat(row[4])
	vol, ok5 := asFloat(row[6])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return entity.Candle{}, false
	}
	return entity.Candle{
		Time:   time.Unix(int64(ts), 0).UTC(),
		Open:   open,
		Close:  cls,
		High:   high,
		Low:    low,
		Volume: vol,
	}, true
}

// asFloat はKrakenが数値と文字列を混在させるため、両方をfloat64に揃えます。
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		n, err := strconv.ParseFloat(x, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketdata_backend/internal/feature/marketdata/domain/entity"
	"marketdata_backend/internal/platform/frame"
	"marketdata_backend/internal/platform/sqlgen"
)

const (
	// MinuteTable は毎回のinitializeで全置換される分足テーブルです。
	MinuteTable = "marketdata_minute_candles"
	// HourTable はinitialize後は追記のみの時間足テーブルです。
	HourTable = "marketdata_hour_candles"

	// backfillDays は初回同期で遡る日数です。
	backfillDays = 30
)

// ExchangeSource は取引所ごとのデータソースのインターフェースです。
// 外部 API の実装を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type ExchangeSource interface {
	Name() string
	Symbols() []string
	FetchRange(ctx context.Context, symbol string, g entity.Granularity, from, to time.Time) ([]entity.Candle, error)
}

// CandleGateway は永続化レイヤーのインターフェースです。
type CandleGateway interface {
	Upload(ctx context.Context, table string, f *frame.Frame, replace bool) error
	InsertRows(ctx context.Context, table string, f *frame.Frame) error
	CreateTable(ctx context.Context, table string, cols []frame.Column) error
	HasTable(table string) bool
	Query(ctx context.Context, raw string) (*frame.Frame, error)
}

// CandleColumns は永続化されるローソク足テーブルの列定義です。
// CREATE TABLEとINSERTの両方がこの順序に従います。
func CandleColumns() []frame.Column {
	return []frame.Column{
		{Name: "dt", Type: frame.TypeTimestamp},
		{Name: "dt_timestamp", Type: frame.TypeInteger},
		{Name: "open_value", Type: frame.TypeReal},
		{Name: "close_value", Type: frame.TypeReal},
		{Name: "high_value", Type: frame.TypeReal},
		{Name: "low_value", Type: frame.TypeReal},
		{Name: "volume", Type: frame.TypeReal},
		{Name: "symbol", Type: frame.TypeText},
		{Name: "exchange_name", Type: frame.TypeText},
	}
}

// appendCandles はローソク足を列定義どおりの行としてFrameに積みます。
// dt_timestampは日付関数に依存した比較を避けるための生のUnix秒です。
func appendCandles(f *frame.Frame, cs []entity.Candle) {
	for _, c := range cs {
		_ = f.Append(
			c.Time.UTC(),
			c.Time.UTC().Unix(),
			c.Open,
			c.Close,
			c.High,
			c.Low,
			c.Volume,
			c.Symbol,
			c.Exchange,
		)
	}
}

// SyncUsecase は取引所からの取得とストアへの永続化を調停するユースケースです。
type SyncUsecase struct {
	sources []ExchangeSource
	gateway CandleGateway
	now     func() time.Time
}

// NewSyncUsecase は新しい SyncUsecase を作成します。
func NewSyncUsecase(sources []ExchangeSource, gateway CandleGateway) *SyncUsecase {
	return &SyncUsecase{sources: sources, gateway: gateway, now: time.Now}
}

// Initialize は全取引所の分足（直近の全量）と30日分の時間足を取得し、
// それぞれのテーブルを全置換します。取得結果が空の取引所はそのテーブルに何も寄与しません。
func (su *SyncUsecase) Initialize(ctx context.Context) error {
	now := su.now().UTC()

	minute := su.collect(ctx, entity.GranularityMinute, time.Time{}, time.Time{})
	if minute.Len() == 0 {
		slog.Warn("no minute candles fetched, minute table left untouched")
	} else if err := su.gateway.Upload(ctx, MinuteTable, minute, true); err != nil {
		return fmt.Errorf("replace minute table: %w", err)
	}

	hourFrom := entity.TruncDay(now).AddDate(0, 0, -backfillDays)
	hour := su.collect(ctx, entity.GranularityHour, hourFrom, now)
	if hour.Len() == 0 {
		slog.Warn("no hour candles fetched, hour table left untouched")
	} else if err := su.gateway.Upload(ctx, HourTable, hour, true); err != nil {
		return fmt.Errorf("replace hour table: %w", err)
	}

	return nil
}

// IncrementalUpdate は取引所ごとのウォーターマークから現在までの時間足を取得し、
// 時間足テーブルへ追記します。ウォーターマーク以前の期間は再取得も再挿入もしません。
// これが唯一の重複排除機構です（ストア側に一意制約はありません）。
func (su *SyncUsecase) IncrementalUpdate(ctx context.Context, firstLaunch time.Time) error {
	now := su.now().UTC()

	// 取得は取引所ごとに並行、書き込みは単一ライターとして直列に行う
	frames := make([]*frame.Frame, len(su.sources))
	eg, gctx := errgroup.WithContext(ctx)
	for i, src := range su.sources {
		i, src := i, src
		eg.Go(func() error {
			from, err := su.nextWindowStart(gctx, src.Name(), firstLaunch)
			if err != nil {
				return err
			}
			f := frame.New(CandleColumns()...)
			appendCandles(f, su.fetchExchange(gctx, src, entity.GranularityHour, from, now))
			frames[i] = f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		// ウォーターマーク計算の失敗はストア障害なので実行全体を中断する
		return err
	}

	for i, f := range frames {
		name := su.sources[i].Name()
		if f.Len() == 0 {
			slog.Info("no new hour candles", "exchange", name)
			continue
		}
		if !su.gateway.HasTable(HourTable) {
			if err := su.gateway.CreateTable(ctx, HourTable, CandleColumns()); err != nil {
				return fmt.Errorf("create hour table: %w", err)
			}
		}
		if err := su.gateway.InsertRows(ctx, HourTable, f); err != nil {
			return fmt.Errorf("append hour candles for %s: %w", name, err)
		}
		slog.Info("hour candles appended", "exchange", name, "rows", f.Len())
	}

	return nil
}

// collect は全取引所から並行に取得した結果を1つのFrameにまとめます。
func (su *SyncUsecase) collect(ctx context.Context, g entity.Granularity, from, to time.Time) *frame.Frame {
	results := make([][]entity.Candle, len(su.sources))
	var eg errgroup.Group
	for i, src := range su.sources {
		i, src := i, src
		eg.Go(func() error {
			results[i] = su.fetchExchange(ctx, src, g, from, to)
			return nil
		})
	}
	_ = eg.Wait()

	f := frame.New(CandleColumns()...)
	for _, cs := range results {
		appendCandles(f, cs)
	}
	return f
}

// fetchExchange は1取引所の全シンボルを取得します。
// 1シンボルの失敗は他のシンボルの取得を止めず、ログに出力して続行します。
func (su *SyncUsecase) fetchExchange(ctx context.Context, src ExchangeSource, g entity.Granularity, from, to time.Time) []entity.Candle {
	var out []entity.Candle
	for _, symbol := range src.Symbols() {
		cs, err := src.FetchRange(ctx, symbol, g, from, to)
		if err != nil {
			slog.Error("failed to fetch candles", "exchange", src.Name(), "symbol", symbol, "granularity", g, "error", err)
			continue
		}
		for i := range cs {
			cs[i].Symbol = symbol
			cs[i].Exchange = src.Name()
		}
		out = append(out, cs...)
	}
	return out
}

// nextWindowStart は次に取得すべき窓の開始時刻を返します。
// ウォーターマークがあればその1期間後、なければ初回起動日の30日前です。
func (su *SyncUsecase) nextWindowStart(ctx context.Context, exchange string, firstLaunch time.Time) (time.Time, error) {
	wm, ok, err := su.watermark(ctx, exchange)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return entity.TruncDay(firstLaunch).AddDate(0, 0, -backfillDays), nil
	}
	return wm.Add(entity.GranularityHour.Period()), nil
}

// watermark は指定取引所の時間足の最大保存時刻をストアから毎回計算します。
// dt_timestampは生のUnix秒なので、ストアの日付関数に頼らず整数のMAXで求まります。
func (su *SyncUsecase) watermark(ctx context.Context, exchange string) (time.Time, bool, error) {
	if !su.gateway.HasTable(HourTable) {
		return time.Time{}, false, nil
	}

	quote, err := sqlgen.Literal(frame.TypeText)
	if err != nil {
		return time.Time{}, false, err
	}
	lit, err := quote(exchange)
	if err != nil {
		return time.Time{}, false, err
	}

	query := fmt.Sprintf("SELECT MAX(dt_timestamp) AS max_ts FROM %s WHERE exchange_name = %s", HourTable, lit)
	f, err := su.gateway.Query(ctx, query)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("watermark for %s: %w", exchange, err)
	}
	if f.Len() == 0 {
		return time.Time{}, false, nil
	}
	// 行が無い場合、MAXはNULLの1行を返す
	ts, ok := f.Int64(0, "max_ts")
	if !ok {
		return time.Time{}, false, nil
	}
	return time.Unix(ts, 0).UTC(), true, nil
}

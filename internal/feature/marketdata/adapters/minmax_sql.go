package adapters

import (
	"context"
	"fmt"
	"time"

	"marketdata_backend/internal/feature/marketdata/domain/entity"
	"marketdata_backend/internal/feature/marketdata/usecase"
	"marketdata_backend/internal/platform/frame"
	"marketdata_backend/internal/platform/sqlgen"
)

// queryGateway は任意の読み取りクエリを実行できるゲートウェイです。
type queryGateway interface {
	Query(ctx context.Context, raw string) (*frame.Frame, error)
}

type minMaxSQL struct {
	gw queryGateway
}

var _ usecase.MinMaxRepository = (*minMaxSQL)(nil)

func NewMinMaxRepository(gw queryGateway) *minMaxSQL {
	return &minMaxSQL{gw: gw}
}

// FindDailyExtremes は時間足テーブルをウィンドウ関数で暦日ごとに順位付けし、
// low_value昇順の1位をmin、high_value降順の1位をmaxとして返します。
func (r *minMaxSQL) FindDailyExtremes(ctx context.Context, symbol string) ([]entity.DailyExtreme, error) {
	quote, err := sqlgen.Literal(frame.TypeText)
	if err != nil {
		return nil, err
	}
	sym, err := quote(symbol)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT kind, dt, open_value, close_value, high_value, low_value, volume, exchange_name
FROM (
    SELECT 'min' AS kind, dt, open_value, close_value, high_value, low_value, volume, exchange_name,
           ROW_NUMBER() OVER (PARTITION BY substr(dt, 1, 10) ORDER BY low_value ASC) AS rn
    FROM %[1]s
    WHERE symbol = %[2]s
    UNION ALL
    SELECT 'max' AS kind, dt, open_value, close_value, high_value, low_value, volume, exchange_name,
           ROW_NUMBER() OVER (PARTITION BY substr(dt, 1, 10) ORDER BY high_value DESC) AS rn
    FROM %[1]s
    WHERE symbol = %[2]s
) AS ranked
WHERE rn = 1
ORDER BY substr(dt, 1, 10), kind`, usecase.HourTable, sym)

	f, err := r.gw.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]entity.DailyExtreme, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		kind, _ := f.String(i, "kind")
		dt, _ := f.String(i, "dt")
		tm, err := time.Parse("2006-01-02 15:04", dt)
		if err != nil {
			return nil, fmt.Errorf("parse dt %q: %w", dt, err)
		}
		open, _ := f.Float64(i, "open_value")
		cls, _ := f.Float64(i, "close_value")
		high, _ := f.Float64(i, "high_value")
		low, _ := f.Float64(i, "low_value")
		vol, _ := f.Float64(i, "volume")
		exch, _ := f.String(i, "exchange_name")

		out = append(out, entity.DailyExtreme{
			Kind:     kind,
			Time:     tm.UTC(),
			Open:     open,
			Close:    cls,
			High:     high,
			Low:      low,
			Volume:   vol,
			Exchange: exch,
		})
	}
	return out, nil
}

// Package usecase はマーケットデータ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"

	"marketdata_backend/internal/feature/marketdata/domain/entity"
)

// ErrSymbolRequired はシンボル未指定のクエリに返されます。
var ErrSymbolRequired = errors.New("symbol is required")

// MinMaxRepository は日次min/maxローソク足の読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MinMaxRepository interface {
	// FindDailyExtremes は指定シンボルの暦日ごとのmin/maxローソク足を返します。
	FindDailyExtremes(ctx context.Context, symbol string) ([]entity.DailyExtreme, error)
}

// minMaxUsecase は日次min/maxクエリのユースケースを定義します。
type minMaxUsecase struct {
	repo MinMaxRepository
}

// NewMinMaxUsecase はminMaxUsecaseの新しいインスタンスを生成します。
func NewMinMaxUsecase(repo MinMaxRepository) *minMaxUsecase {
	return &minMaxUsecase{repo: repo}
}

// GetMinMaxCandles は指定シンボルの暦日ごとのmin/maxローソク足を取得します。
func (mu *minMaxUsecase) GetMinMaxCandles(ctx context.Context, symbol string) ([]entity.DailyExtreme, error) {
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	return mu.repo.FindDailyExtremes(ctx, symbol)
}

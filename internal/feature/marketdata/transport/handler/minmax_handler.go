// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketdata_backend/internal/feature/marketdata/domain/entity"
	"marketdata_backend/internal/feature/marketdata/transport/http/dto"
)

// MinMaxUsecase は日次min/maxクエリのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MinMaxUsecase interface {
	GetMinMaxCandles(ctx context.Context, symbol string) ([]entity.DailyExtreme, error)
}

// MinMaxHandler は日次min/maxローソク足のHTTPリクエストを処理します。
type MinMaxHandler struct {
	uc MinMaxUsecase
}

// NewMinMaxHandler は指定されたusecaseでMinMaxHandlerの新しいインスタンスを生成します。
func NewMinMaxHandler(uc MinMaxUsecase) *MinMaxHandler {
	return &MinMaxHandler{uc: uc}
}

// GetMinMaxCandlesHandler はシンボルを受け取り、暦日ごとのmin/maxローソク足をJSONで返します。
//
// エンドポイント例:
// GET /api/get-min-max-candles/BTCUSD
func (h *MinMaxHandler) GetMinMaxCandlesHandler(c *gin.Context) {
	symbol := c.Param("symbol")

	extremes, err := h.uc.GetMinMaxCandles(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	// 履歴が空なのはサーバ障害ではないため、メッセージ付きの200で返す
	if len(extremes) == 0 {
		c.JSON(http.StatusOK, gin.H{"result": fmt.Sprintf("no candles stored for symbol %s", symbol)})
		return
	}

	out := make([]dto.MinMaxCandleResponse, 0, len(extremes))
	for _, x := range extremes {
		out = append(out, dto.MinMaxCandleResponse{
			Type:     x.Kind,
			Time:     x.Time.UTC().Format("2006-01-02 15:04"),
			Close:    x.Close,
			Open:     x.Open,
			High:     x.High,
			Low:      x.Low,
			Volume:   x.Volume,
			Exchange: x.Exchange,
		})
	}

	c.JSON(http.StatusOK, out)
}

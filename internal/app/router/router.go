package router

import (
	"github.com/gin-gonic/gin"

	"marketdata_backend/internal/feature/marketdata/transport/handler"
)

func NewRouter(minMax *handler.MinMaxHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", handler.Health)

	api := r.Group("/api")
	{
		api.GET("/get-min-max-candles/:symbol", minMax.GetMinMaxCandlesHandler)
	}

	return r
}

package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/tx433/internal/config"
	"github.com/taoyao-code/tx433/internal/protocol"
	"github.com/taoyao-code/tx433/internal/switcher"
)

// Switcher 开关发送能力
type Switcher interface {
	Switch(ctx context.Context, req switcher.Request) (switcher.Result, error)
	Preview(req switcher.Request) (switcher.Result, error)
}

// SwitchHandler 开关命令 API
type SwitchHandler struct {
	sw     Switcher
	logger *zap.Logger
}

func NewSwitchHandler(sw Switcher, logger *zap.Logger) *SwitchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwitchHandler{sw: sw, logger: logger}
}

// RegisterSwitchRoutes 注册开关命令路由
func RegisterSwitchRoutes(r *gin.Engine, sw Switcher, apiCfg cfgpkg.APIConfig, logger *zap.Logger) {
	if r == nil || sw == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := NewSwitchHandler(sw, logger)
	limiter := NewRateLimiter(apiCfg.RateLimit.PerSecond, apiCfg.RateLimit.Burst)

	api := r.Group("/api")
	api.Use(APIKeyAuth(apiCfg.Auth, logger))
	if !apiCfg.Auth.Enabled {
		logger.Warn("api authentication disabled")
	}

	api.GET("/frames/:group/:device/:command", h.Preview)

	send := api.Group("", RateLimit(limiter))
	send.POST("/switches/:group/:device/:command", h.Switch)
	send.POST("/aliases/:name/:command", h.SwitchAlias)
}

// Switch POST /api/switches/:group/:device/:command
func (h *SwitchHandler) Switch(c *gin.Context) {
	req := switcher.Request{Group: c.Param("group"), Device: c.Param("device"), Command: c.Param("command")}
	res, err := h.sw.Switch(c.Request.Context(), req)
	h.respond(c, res, err)
}

// SwitchAlias POST /api/aliases/:name/:command
func (h *SwitchHandler) SwitchAlias(c *gin.Context) {
	req := switcher.Request{Alias: c.Param("name"), Command: c.Param("command")}
	res, err := h.sw.Switch(c.Request.Context(), req)
	h.respond(c, res, err)
}

// Preview GET /api/frames/:group/:device/:command
func (h *SwitchHandler) Preview(c *gin.Context) {
	req := switcher.Request{Group: c.Param("group"), Device: c.Param("device"), Command: c.Param("command")}
	res, err := h.sw.Preview(req)
	h.respond(c, res, err)
}

func (h *SwitchHandler) respond(c *gin.Context, res switcher.Result, err error) {
	if err == nil {
		c.JSON(http.StatusOK, res)
		return
	}
	status := StatusFor(err)
	body := gin.H{
		"error":      switcher.ErrorLabel(err),
		"message":    err.Error(),
		"request_id": res.RequestID,
	}
	var pe *protocol.Error
	if errors.As(err, &pe) && pe.Value != "" {
		body["value"] = pe.Value
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("switch request failed", zap.String("request_id", res.RequestID), zap.Error(err))
	}
	c.JSON(status, body)
}

// StatusFor 错误 -> HTTP 状态码
func StatusFor(err error) int {
	switch protocol.KindOf(err) {
	case protocol.KindInvalidAddress, protocol.KindInvalidCommand, protocol.KindInvalidSymbol:
		return http.StatusBadRequest
	case protocol.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/tx433/internal/config"
	"github.com/taoyao-code/tx433/internal/httpserver"
	"github.com/taoyao-code/tx433/internal/logging"
	"github.com/taoyao-code/tx433/internal/metrics"
	"github.com/taoyao-code/tx433/internal/protocol/intertechno"
	"github.com/taoyao-code/tx433/internal/switcher"
	"github.com/taoyao-code/tx433/internal/transport"
)

func main() {
	fs := pflag.NewFlagSet("tx433d", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "config file (yaml/toml/json)")
	fs.String("ip", "192.168.1.136", "gateway IP address")
	fs.Int("port", transport.DefaultPort, "gateway UDP port")
	fs.String("addr", ":8433", "HTTP listen address")
	fs.String("aliases", "", "switch alias file (yaml)")
	fs.String("log-level", "info", "log level")
	_ = fs.Parse(os.Args[1:])

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath, fs)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	txm := metrics.NewTxMetrics(reg)
	var metricsHandler http.Handler
	if cfg.Metrics.Enable {
		metricsHandler = metrics.Handler(reg)
	}

	// 4) 开关别名
	var aliases *intertechno.Aliases
	if cfg.Aliases.Path != "" {
		aliases, err = intertechno.LoadAliases(cfg.Aliases.Path)
		if err != nil {
			log.Fatal("load aliases failed", zap.String("path", cfg.Aliases.Path), zap.Error(err))
		}
		log.Info("aliases loaded", zap.Int("count", aliases.Len()))
	}

	// 5) 发送服务
	svc, err := switcher.New(switcher.Config{
		Wire:     cfg.Wire,
		Endpoint: transport.Endpoint{Host: cfg.Gateway.IP, Port: cfg.Gateway.Port},
	}, transport.NewUDPSender(cfg.Gateway.WriteTimeout), aliases, txm, log)
	if err != nil {
		log.Fatal("switch service init failed", zap.Error(err))
	}

	// 6) HTTP 服务
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, func() bool { return true })
	httpSrv.Register(func(r *gin.Engine) {
		httpserver.RegisterSwitchRoutes(r, svc, cfg.API, log)
	})

	go func() {
		log.Info("http bridge listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("gateway", svc.Endpoint().String()))
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	log.Info("http bridge stopped")
}

// Package switcher 开关命令发送流程：地址/命令 -> 报文 -> 时长 -> TXP 帧 -> UDP
package switcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/tx433/internal/metrics"
	"github.com/taoyao-code/tx433/internal/protocol"
	"github.com/taoyao-code/tx433/internal/protocol/intertechno"
	"github.com/taoyao-code/tx433/internal/protocol/linecode"
	"github.com/taoyao-code/tx433/internal/protocol/txp"
	"github.com/taoyao-code/tx433/internal/transport"
)

// Config 发送参数
type Config struct {
	Wire     txp.Config
	Endpoint transport.Endpoint
}

// Request 开关请求：Group+Device 或 Alias 二选一
type Request struct {
	Group   string
	Device  string
	Alias   string
	Command string
}

// Result 单次发送结果
type Result struct {
	RequestID string `json:"request_id"`
	Address   string `json:"address,omitempty"`
	Command   string `json:"command,omitempty"`
	LineCode  string `json:"linecode"`
	Telegram  string `json:"telegram"`
	Frame     string `json:"frame"`
	Endpoint  string `json:"endpoint"`
	Sent      bool   `json:"sent"`
}

// Service 无状态，可并发使用
type Service struct {
	cfg     Config
	sender  transport.Sender
	aliases *intertechno.Aliases
	metrics *metrics.TxMetrics
	log     *zap.Logger
}

// New 创建发送服务；aliases / m 可为 nil
func New(cfg Config, sender transport.Sender, aliases *intertechno.Aliases, m *metrics.TxMetrics, log *zap.Logger) (*Service, error) {
	if err := cfg.Wire.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Endpoint.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cfg: cfg, sender: sender, aliases: aliases, metrics: m, log: log}, nil
}

// NewRequestID 生成短请求 ID
func NewRequestID() string {
	return "tx-" + uuid.New().String()[:8]
}

// Endpoint 目标网关
func (s *Service) Endpoint() transport.Endpoint { return s.cfg.Endpoint }

func (s *Service) resolve(req Request) (intertechno.Address, error) {
	if strings.TrimSpace(req.Alias) != "" {
		return s.aliases.Resolve(req.Alias)
	}
	return intertechno.ParseAddress(req.Group, req.Device)
}

// Encode 构造帧，不发送
func (s *Service) Encode(req Request) (intertechno.Address, intertechno.Telegram, txp.Frame, error) {
	addr, err := s.resolve(req)
	if err != nil {
		return intertechno.Address{}, "", txp.Frame{}, err
	}
	tg, err := intertechno.Assemble(addr, req.Command)
	if err != nil {
		return addr, "", txp.Frame{}, err
	}
	timings, err := tg.Timings()
	if err != nil {
		return addr, tg, txp.Frame{}, err
	}
	frame, err := txp.Build(s.cfg.Wire, timings)
	if err != nil {
		return addr, tg, txp.Frame{}, err
	}
	return addr, tg, frame, nil
}

// Preview 构造帧并返回文本，不发送
func (s *Service) Preview(req Request) (Result, error) {
	res := Result{RequestID: NewRequestID(), LineCode: linecode.PT2262.String(), Endpoint: s.cfg.Endpoint.String()}
	addr, tg, frame, err := s.Encode(req)
	if err != nil {
		s.fail(res.RequestID, err)
		return res, err
	}
	s.fill(&res, addr, req.Command, tg, frame)
	s.count("preview", 0)
	s.log.Debug("frame preview",
		zap.String("request_id", res.RequestID),
		zap.String("address", res.Address),
		zap.String("telegram", res.Telegram))
	return res, nil
}

// Switch 构造帧并发送一个数据报
func (s *Service) Switch(ctx context.Context, req Request) (Result, error) {
	res := Result{RequestID: NewRequestID(), LineCode: linecode.PT2262.String(), Endpoint: s.cfg.Endpoint.String()}
	addr, tg, frame, err := s.Encode(req)
	if err != nil {
		s.fail(res.RequestID, err)
		return res, err
	}
	s.fill(&res, addr, req.Command, tg, frame)
	if err := s.send(ctx, &res, frame); err != nil {
		return res, err
	}
	s.log.Info("switch command sent",
		zap.String("request_id", res.RequestID),
		zap.String("address", res.Address),
		zap.String("command", res.Command),
		zap.String("endpoint", res.Endpoint))
	return res, nil
}

// SendRaw 发送底层报文（任意线路编码），用于调试
func (s *Service) SendRaw(ctx context.Context, symbols string, kind linecode.Kind) (Result, error) {
	res := Result{RequestID: NewRequestID(), LineCode: kind.String(), Telegram: symbols, Endpoint: s.cfg.Endpoint.String()}
	frame, err := s.rawFrame(symbols, kind)
	if err != nil {
		s.fail(res.RequestID, err)
		return res, err
	}
	res.Frame = frame.String()
	if err := s.send(ctx, &res, frame); err != nil {
		return res, err
	}
	s.log.Info("raw telegram sent",
		zap.String("request_id", res.RequestID),
		zap.String("linecode", res.LineCode),
		zap.String("telegram", symbols),
		zap.String("endpoint", res.Endpoint))
	return res, nil
}

// PreviewRaw 同 SendRaw，不发送
func (s *Service) PreviewRaw(symbols string, kind linecode.Kind) (Result, error) {
	res := Result{RequestID: NewRequestID(), LineCode: kind.String(), Telegram: symbols, Endpoint: s.cfg.Endpoint.String()}
	frame, err := s.rawFrame(symbols, kind)
	if err != nil {
		s.fail(res.RequestID, err)
		return res, err
	}
	res.Frame = frame.String()
	s.count("preview", 0)
	return res, nil
}

func (s *Service) rawFrame(symbols string, kind linecode.Kind) (txp.Frame, error) {
	timings, err := kind.Expand(strings.ToUpper(symbols))
	if err != nil {
		return txp.Frame{}, err
	}
	return txp.Build(s.cfg.Wire, timings)
}

func (s *Service) send(ctx context.Context, res *Result, frame txp.Frame) error {
	payload := frame.Encode()
	if err := s.sender.Send(ctx, payload, s.cfg.Endpoint); err != nil {
		s.fail(res.RequestID, err)
		return fmt.Errorf("send frame: %w", err)
	}
	res.Sent = true
	s.count("sent", len(payload))
	return nil
}

func (s *Service) fill(res *Result, addr intertechno.Address, command string, tg intertechno.Telegram, frame txp.Frame) {
	res.Address = addr.String()
	res.Command = strings.ToUpper(strings.TrimSpace(command))
	res.Telegram = tg.String()
	res.Frame = frame.String()
}

func (s *Service) count(result string, bytes int) {
	if s.metrics == nil {
		return
	}
	s.metrics.FramesTotal.WithLabelValues(result).Inc()
	if bytes > 0 {
		s.metrics.FrameBytes.Add(float64(bytes))
	}
}

func (s *Service) fail(requestID string, err error) {
	label := ErrorLabel(err)
	if s.metrics != nil {
		s.metrics.FramesTotal.WithLabelValues("error").Inc()
		s.metrics.ErrorsTotal.WithLabelValues(label).Inc()
	}
	s.log.Warn("switch command failed",
		zap.String("request_id", requestID),
		zap.String("kind", label),
		zap.Error(err))
}

// ErrorLabel 错误类别标签
func ErrorLabel(err error) string {
	if k := protocol.KindOf(err); k != 0 {
		return k.String()
	}
	return "frame"
}

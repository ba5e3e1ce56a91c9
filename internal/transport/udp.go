// Package transport 网关数据报发送（无重试、无应答）
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/taoyao-code/tx433/internal/protocol"
)

// DefaultPort 网关默认 UDP 端口
const DefaultPort = 49880

var ErrInvalidEndpoint = errors.New("transport: invalid endpoint")

// Endpoint 网关地址
type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) Validate() error {
	if strings.TrimSpace(e.Host) == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidEndpoint)
	}
	if e.Port <= 0 || e.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidEndpoint, e.Port)
	}
	return nil
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Sender 发送一个数据报
type Sender interface {
	Send(ctx context.Context, payload []byte, ep Endpoint) error
}

// UDPSender 每次发送独立建立 UDP socket
type UDPSender struct {
	WriteTimeout time.Duration
}

func NewUDPSender(writeTimeout time.Duration) *UDPSender {
	if writeTimeout <= 0 {
		writeTimeout = 2 * time.Second
	}
	return &UDPSender{WriteTimeout: writeTimeout}
}

// Send 成功仅表示数据报已交给网络栈
func (s *UDPSender) Send(ctx context.Context, payload []byte, ep Endpoint) error {
	if err := ep.Validate(); err != nil {
		return protocol.TransportError(ep.String(), err)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", ep.String())
	if err != nil {
		return protocol.TransportError(ep.String(), err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.WriteTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return protocol.TransportError(ep.String(), err)
	}

	n, err := conn.Write(payload)
	if err != nil {
		return protocol.TransportError(ep.String(), err)
	}
	if n != len(payload) {
		return protocol.TransportError(ep.String(), fmt.Errorf("short write: %d/%d", n, len(payload)))
	}
	return nil
}

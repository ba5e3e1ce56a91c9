// Package txp TXP 网关文本帧（ConnAir 兼容 UDP 报文）
//
// 格式：IDENT<ch>,0,<repeat>,<pause>,<tune>,<count>,<t0>,...,<tN>,;
package txp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// ConfigVersion 当前协议参数版本
	ConfigVersion = 1

	DefaultIdent    = "TXP:"
	DefaultChannel  = 0
	DefaultRepeat   = 10   // 接收端重复解码次数
	DefaultPause    = 5600 // 帧间隔
	DefaultUnitTime = 350  // 单位时间 (us)

	Tail = ';'
)

var (
	ErrUnsupportedVersion = errors.New("txp: unsupported config version")
	ErrInvalidIdent       = errors.New("txp: invalid ident")
	ErrInvalidChannel     = errors.New("txp: channel must be 0..9")
	ErrInvalidRepeat      = errors.New("txp: repeat must be positive")
	ErrInvalidPause       = errors.New("txp: pause must not be negative")
	ErrInvalidUnitTime    = errors.New("txp: unit time must be positive")
	ErrEmptyPayload       = errors.New("txp: empty payload")
	ErrInvalidTiming      = errors.New("txp: timing unit must be positive")
)

// Config 协议参数（唯一定义处）
type Config struct {
	Version  int    `mapstructure:"version"`
	Ident    string `mapstructure:"ident"`
	Channel  int    `mapstructure:"channel"`
	Repeat   int    `mapstructure:"repeat"`
	Pause    int    `mapstructure:"pause"`
	UnitTime int    `mapstructure:"unitTime"`
}

func DefaultConfig() Config {
	return Config{
		Version:  ConfigVersion,
		Ident:    DefaultIdent,
		Channel:  DefaultChannel,
		Repeat:   DefaultRepeat,
		Pause:    DefaultPause,
		UnitTime: DefaultUnitTime,
	}
}

func (c Config) Validate() error {
	if c.Version != ConfigVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}
	if c.Ident == "" || strings.ContainsAny(c.Ident, ",; \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidIdent, c.Ident)
	}
	if c.Channel < 0 || c.Channel > 9 {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, c.Channel)
	}
	if c.Repeat <= 0 {
		return ErrInvalidRepeat
	}
	if c.Pause < 0 {
		return ErrInvalidPause
	}
	if c.UnitTime <= 0 {
		return ErrInvalidUnitTime
	}
	return nil
}

// Header 帧头
type Header struct {
	Proto    string // IDENT + 通道号
	Reserved int    // 固定为 0
	Repeat   int
	Pause    int
	UnitTime int
	Count    int // 载荷长度 / 2
}

// Frame 帧头 + 时长载荷
type Frame struct {
	Header  Header
	Payload []int
}

// DerivedCount 帧头计数字段：载荷元素数整除 2
// 混合 4/2 时长符号时不等于符号数，接收端按此值工作，保持原样
func DerivedCount(payloadLen int) int {
	return payloadLen / 2
}

// Build 构造帧，载荷被复制
func Build(cfg Config, payload []int) (Frame, error) {
	if err := cfg.Validate(); err != nil {
		return Frame{}, err
	}
	if len(payload) == 0 {
		return Frame{}, ErrEmptyPayload
	}
	for i, t := range payload {
		if t <= 0 {
			return Frame{}, fmt.Errorf("%w: index %d value %d", ErrInvalidTiming, i, t)
		}
	}
	return Frame{
		Header: Header{
			Proto:    cfg.Ident + strconv.Itoa(cfg.Channel),
			Reserved: 0,
			Repeat:   cfg.Repeat,
			Pause:    cfg.Pause,
			UnitTime: cfg.UnitTime,
			Count:    DerivedCount(len(payload)),
		},
		Payload: append([]int(nil), payload...),
	}, nil
}

// Encode 序列化为 ASCII 帧
func (f Frame) Encode() []byte {
	buf := make([]byte, 0, 32+4*len(f.Payload))
	buf = append(buf, f.Header.Proto...)
	for _, n := range []int{f.Header.Reserved, f.Header.Repeat, f.Header.Pause, f.Header.UnitTime, f.Header.Count} {
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, int64(n), 10)
	}
	for _, t := range f.Payload {
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, int64(t), 10)
	}
	buf = append(buf, ',', Tail)
	return buf
}

func (f Frame) String() string {
	return string(f.Encode())
}

// Package linecode 433MHz 遥控线路编码：符号 -> 脉冲时长（单位时间的整数倍）
//
// 参考 rc-switch KnowHow_LineCoding：
//   - PT2262 / SC5262 / HX2262 三态编码，数据位 4 个时长，同步位 2 个时长
//   - EV1527 / RT1527 / HS1527 旧式编码，每个符号 2 个时长
package linecode

import (
	"fmt"
	"strings"

	"github.com/taoyao-code/tx433/internal/protocol"
)

// 符号
const (
	Zero  byte = '0'
	One   byte = '1'
	Float byte = 'F'
	Sync  byte = 'S'
)

// Kind 线路编码类型（封闭集合，构造时确定）
type Kind int

const (
	PT2262 Kind = iota // 三态，与 Intertechno 地址编码组合使用
	EV1527             // 旧式二态，仅用于底层报文
)

var tables = map[Kind]map[byte][]int{
	PT2262: {
		Zero:  {1, 3, 1, 3},
		One:   {3, 1, 3, 1},
		Float: {1, 3, 3, 1},
		Sync:  {1, 31},
	},
	EV1527: {
		Zero: {1, 3},
		One:  {3, 1},
		Sync: {1, 31},
	},
}

// ParseKind 按名称解析编码类型（不区分大小写）
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pt2262", "tristate", "tri-state":
		return PT2262, nil
	case "ev1527", "legacy":
		return EV1527, nil
	default:
		return 0, fmt.Errorf("unknown line code %q", name)
	}
}

func (k Kind) String() string {
	switch k {
	case PT2262:
		return "pt2262"
	case EV1527:
		return "ev1527"
	default:
		return fmt.Sprintf("linecode(%d)", int(k))
	}
}

// Timings 返回符号对应的时长序列副本
func (k Kind) Timings(sym byte) ([]int, error) {
	t, ok := tables[k][sym]
	if !ok {
		return nil, protocol.InvalidSymbol(sym)
	}
	return append([]int(nil), t...), nil
}

// Expand 按顺序展开整条报文
func (k Kind) Expand(symbols string) ([]int, error) {
	table := tables[k]
	out := make([]int, 0, 4*len(symbols))
	for i := 0; i < len(symbols); i++ {
		t, ok := table[symbols[i]]
		if !ok {
			return nil, protocol.InvalidSymbol(symbols[i])
		}
		out = append(out, t...)
	}
	return out, nil
}

// ExpandedLen 按码表计算展开后的长度，不校验符号
func (k Kind) ExpandedLen(symbols string) int {
	n := 0
	for i := 0; i < len(symbols); i++ {
		switch {
		case symbols[i] == Sync:
			n += 2
		case k == PT2262:
			n += 4
		default:
			n += 2
		}
	}
	return n
}

// Alphabet 返回该编码支持的符号集合
func (k Kind) Alphabet() string {
	switch k {
	case PT2262:
		return "01FS"
	case EV1527:
		return "01S"
	default:
		return ""
	}
}

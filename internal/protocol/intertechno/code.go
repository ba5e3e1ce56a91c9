// Package intertechno Intertechno 固定码开关：地址/命令 -> 三态报文
//
// 报文布局（13 个符号）：
// group[4] | device[4] | "0F" | command[2] | "S"
package intertechno

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taoyao-code/tx433/internal/protocol"
	"github.com/taoyao-code/tx433/internal/protocol/linecode"
)

const (
	// Slots 组号/设备号槽位数
	Slots = 16

	addressSuffix = "0F"

	AddressLen  = 4 + 4 + len(addressSuffix)
	CommandLen  = 2
	TelegramLen = AddressLen + CommandLen + 1
)

// codeTable 槽位 -> 4 符号三态码（低位在前）
var codeTable = [Slots]string{
	"0000", "F000", "0F00", "FF00", "00F0", "F0F0", "0FF0", "FFF0",
	"000F", "F00F", "0F0F", "FF0F", "00FF", "F0FF", "0FFF", "FFFF",
}

// 命令表
const (
	CommandOn  = "ON"
	CommandOff = "OFF"
)

var commandTable = map[string]string{
	CommandOn:  "FF",
	CommandOff: "F0",
}

// Address 组号 + 设备号（均为 0..15 的槽位索引）
type Address struct {
	Group  int
	Device int
}

// NewAddress 由组字母 A..P 与设备号 1..16 构造地址
func NewAddress(group string, device int) (Address, error) {
	g := strings.TrimSpace(group)
	if len(g) != 1 {
		return Address{}, protocol.InvalidAddress("group", group)
	}
	gi := int(strings.ToUpper(g)[0]) - 'A'
	if gi < 0 || gi >= Slots {
		return Address{}, protocol.InvalidAddress("group", group)
	}
	di := device - 1
	if di < 0 || di >= Slots {
		return Address{}, protocol.InvalidAddress("device", strconv.Itoa(device))
	}
	return Address{Group: gi, Device: di}, nil
}

// ParseAddress 同 NewAddress，设备号为字符串
func ParseAddress(group, device string) (Address, error) {
	n, err := strconv.Atoi(strings.TrimSpace(device))
	if err != nil {
		return Address{}, protocol.InvalidAddress("device", device)
	}
	return NewAddress(group, n)
}

// GroupLetter 返回组字母
func (a Address) GroupLetter() string {
	return string(rune('A' + a.Group))
}

// DeviceNumber 返回 1 起的设备号
func (a Address) DeviceNumber() int {
	return a.Device + 1
}

func (a Address) String() string {
	return fmt.Sprintf("%s%d", a.GroupLetter(), a.DeviceNumber())
}

// CodeWord 10 符号地址码
func (a Address) CodeWord() (string, error) {
	if a.Group < 0 || a.Group >= Slots {
		return "", protocol.InvalidAddress("group", strconv.Itoa(a.Group))
	}
	if a.Device < 0 || a.Device >= Slots {
		return "", protocol.InvalidAddress("device", strconv.Itoa(a.Device+1))
	}
	return codeTable[a.Group] + codeTable[a.Device] + addressSuffix, nil
}

// CommandCode 命令名（不区分大小写）-> 2 符号命令码
func CommandCode(name string) (string, error) {
	code, ok := commandTable[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return "", protocol.InvalidCommand(name)
	}
	return code, nil
}

// Telegram 完整三态报文（不可变）
type Telegram string

// Assemble 地址码 + 命令码 + 同步位
func Assemble(addr Address, command string) (Telegram, error) {
	aw, err := addr.CodeWord()
	if err != nil {
		return "", err
	}
	cw, err := CommandCode(command)
	if err != nil {
		return "", err
	}
	return Telegram(aw + cw + string(linecode.Sync)), nil
}

func On(addr Address) (Telegram, error)  { return Assemble(addr, CommandOn) }
func Off(addr Address) (Telegram, error) { return Assemble(addr, CommandOff) }

func (t Telegram) String() string { return string(t) }

// Address 地址段
func (t Telegram) Address() string {
	if len(t) < AddressLen {
		return ""
	}
	return string(t[:AddressLen])
}

// Command 命令段
func (t Telegram) Command() string {
	if len(t) < AddressLen+CommandLen {
		return ""
	}
	return string(t[AddressLen : AddressLen+CommandLen])
}

// Timings 按三态编码展开
func (t Telegram) Timings() ([]int, error) {
	return linecode.PT2262.Expand(string(t))
}

package intertechno

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/tx433/internal/protocol"
)

func TestNewAddress_AllSlots(t *testing.T) {
	for g := 'A'; g <= 'P'; g++ {
		for d := 1; d <= Slots; d++ {
			addr, err := NewAddress(string(g), d)
			require.NoError(t, err)

			word, err := addr.CodeWord()
			require.NoError(t, err)
			require.Len(t, word, AddressLen)
			for i := 0; i < len(word); i++ {
				require.Contains(t, "01F", string(word[i]), "word=%s", word)
			}
			assert.Equal(t, string(g), addr.GroupLetter())
			assert.Equal(t, d, addr.DeviceNumber())
		}
	}
}

func TestNewAddress_CaseInsensitive(t *testing.T) {
	lower, err := NewAddress("j", 1)
	require.NoError(t, err)
	upper, err := NewAddress("J", 1)
	require.NoError(t, err)
	assert.Equal(t, upper, lower)
	assert.Equal(t, "J1", lower.String())
}

func TestNewAddress_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		group  string
		device int
		detail string
	}{
		{"组字母超出 P", "Q", 1, "group"},
		{"组为数字", "1", 1, "group"},
		{"组为空", "", 1, "group"},
		{"组为多字符", "AB", 1, "group"},
		{"设备号为 0", "A", 0, "device"},
		{"设备号为 17", "A", 17, "device"},
		{"设备号为负", "A", -3, "device"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAddress(tt.group, tt.device)
			require.Error(t, err)
			assert.True(t, errors.Is(err, protocol.ErrInvalidAddress))

			var pe *protocol.Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.detail, pe.Detail)
		})
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("l", " 8 ")
	require.NoError(t, err)
	assert.Equal(t, Address{Group: 11, Device: 7}, addr)

	_, err = ParseAddress("A", "one")
	assert.True(t, errors.Is(err, protocol.ErrInvalidAddress))
}

func TestCodeWord_OutOfRangeStruct(t *testing.T) {
	_, err := Address{Group: 16}.CodeWord()
	assert.True(t, errors.Is(err, protocol.ErrInvalidAddress))
	_, err = Address{Device: -1}.CodeWord()
	assert.True(t, errors.Is(err, protocol.ErrInvalidAddress))
}

func TestAssemble_A1On(t *testing.T) {
	addr, err := NewAddress("A", 1)
	require.NoError(t, err)

	tg, err := Assemble(addr, "on")
	require.NoError(t, err)
	assert.Equal(t, Telegram("00000000"+"0F"+"FF"+"S"), tg)
	assert.Len(t, tg, TelegramLen)
	assert.Equal(t, codeTable[0]+codeTable[0]+"0F", tg.Address())
	assert.Equal(t, "FF", tg.Command())

	timings, err := tg.Timings()
	require.NoError(t, err)
	assert.Len(t, timings, 4*12+2*1)
}

func TestAssemble_OnOffDifferOnlyInCommand(t *testing.T) {
	addr, err := NewAddress("J", 1)
	require.NoError(t, err)

	on, err := Assemble(addr, "On")
	require.NoError(t, err)
	off, err := Assemble(addr, "OFF")
	require.NoError(t, err)

	assert.Equal(t, on.Address(), off.Address())
	assert.Equal(t, "FF", on.Command())
	assert.Equal(t, "F0", off.Command())
	assert.Equal(t, string(on[len(on)-1]), string(off[len(off)-1]))

	viaHelper, err := On(addr)
	require.NoError(t, err)
	assert.Equal(t, on, viaHelper)
}

func TestAssemble_InvalidCommand(t *testing.T) {
	addr, err := NewAddress("A", 1)
	require.NoError(t, err)

	for _, cmd := range []string{"", "toggle", "dim", "ONN"} {
		_, err := Assemble(addr, cmd)
		require.Error(t, err, cmd)
		var pe *protocol.Error
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, protocol.KindInvalidCommand, pe.Kind)
		assert.Equal(t, cmd, pe.Value)
	}
}

func TestCodeTable_Distinct(t *testing.T) {
	seen := make(map[string]bool, Slots)
	for _, w := range codeTable {
		assert.Len(t, w, 4)
		assert.Equal(t, "", strings.Trim(w, "0F"))
		assert.False(t, seen[w], w)
		seen[w] = true
	}
}

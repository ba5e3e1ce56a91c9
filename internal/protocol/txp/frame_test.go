package txp

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Header(t *testing.T) {
	f, err := Build(DefaultConfig(), []int{1, 3, 3, 1, 1, 31})
	require.NoError(t, err)
	assert.Equal(t, Header{Proto: "TXP:0", Reserved: 0, Repeat: 10, Pause: 5600, UnitTime: 350, Count: 3}, f.Header)
	assert.Equal(t, "TXP:0,0,10,5600,350,3,1,3,3,1,1,31,;", f.String())
}

func TestBuild_CopiesPayload(t *testing.T) {
	p := []int{1, 3}
	f, err := Build(DefaultConfig(), p)
	require.NoError(t, err)
	p[0] = 9
	assert.Equal(t, []int{1, 3}, f.Payload)
}

func TestBuild_Channel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channel = 3
	f, err := Build(cfg, []int{1, 31})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.String(), "TXP:3,0,"))
}

func TestDerivedCount_LiteralDivision(t *testing.T) {
	assert.Equal(t, 25, DerivedCount(50))
	assert.Equal(t, 3, DerivedCount(7))
	assert.Equal(t, 0, DerivedCount(1))
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		payload []int
		want    error
	}{
		{"空载荷", func(*Config) {}, nil, ErrEmptyPayload},
		{"非正时长", func(*Config) {}, []int{1, 0}, ErrInvalidTiming},
		{"版本不支持", func(c *Config) { c.Version = 2 }, []int{1}, ErrUnsupportedVersion},
		{"标识为空", func(c *Config) { c.Ident = "" }, []int{1}, ErrInvalidIdent},
		{"标识含分隔符", func(c *Config) { c.Ident = "TX,P" }, []int{1}, ErrInvalidIdent},
		{"通道越界", func(c *Config) { c.Channel = 10 }, []int{1}, ErrInvalidChannel},
		{"重复次数为 0", func(c *Config) { c.Repeat = 0 }, []int{1}, ErrInvalidRepeat},
		{"间隔为负", func(c *Config) { c.Pause = -1 }, []int{1}, ErrInvalidPause},
		{"单位时间为 0", func(c *Config) { c.UnitTime = 0 }, []int{1}, ErrInvalidUnitTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := Build(cfg, tt.payload)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEncode_NoWhitespaceAndTail(t *testing.T) {
	f, err := Build(DefaultConfig(), []int{1, 3, 1, 3, 3, 1, 3, 1, 1, 31})
	require.NoError(t, err)
	b := f.Encode()
	assert.True(t, bytes.HasSuffix(b, []byte(",;")))
	assert.False(t, bytes.ContainsAny(b, " \t\r\n"))
	assert.Equal(t, 1, bytes.Count(b, []byte(";")))
	// 6 个帧头字段 + 10 个时长 + 末尾空字段
	assert.Len(t, bytes.Split(bytes.TrimSuffix(b, []byte(";")), []byte(",")), 6+10+1)
}

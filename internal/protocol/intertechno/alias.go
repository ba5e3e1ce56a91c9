package intertechno

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/tx433/internal/protocol"
)

// AliasEntry 别名文件中的单个开关
type AliasEntry struct {
	Group  string `yaml:"group"`
	Device int    `yaml:"device"`
}

// Aliases 开关别名：名称 -> 地址
type Aliases struct {
	byName map[string]Address
}

type aliasFile struct {
	Switches map[string]AliasEntry `yaml:"switches"`
}

// LoadAliases 从 YAML 文件加载别名，任一地址非法即失败
func LoadAliases(path string) (*Aliases, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	return ParseAliases(b)
}

// ParseAliases 解析别名 YAML 内容
func ParseAliases(b []byte) (*Aliases, error) {
	var f aliasFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("unmarshal aliases: %w", err)
	}
	a := &Aliases{byName: make(map[string]Address, len(f.Switches))}
	for name, e := range f.Switches {
		key := normalizeAlias(name)
		if key == "" {
			return nil, fmt.Errorf("alias: empty name")
		}
		if _, dup := a.byName[key]; dup {
			return nil, fmt.Errorf("alias %q: duplicate name", name)
		}
		addr, err := NewAddress(e.Group, e.Device)
		if err != nil {
			return nil, fmt.Errorf("alias %q: %w", name, err)
		}
		a.byName[key] = addr
	}
	return a, nil
}

// Resolve 查找别名（不区分大小写）
func (a *Aliases) Resolve(name string) (Address, error) {
	if a != nil {
		if addr, ok := a.byName[normalizeAlias(name)]; ok {
			return addr, nil
		}
	}
	return Address{}, protocol.InvalidAddress("alias", name)
}

// Len 别名数量
func (a *Aliases) Len() int {
	if a == nil {
		return 0
	}
	return len(a.byName)
}

func normalizeAlias(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

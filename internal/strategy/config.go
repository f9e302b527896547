package strategy

import (
	"fmt"

	"github.com/spf13/cast"
)

// Config 数据库中的策略配置，未知字段忽略
type Config map[string]any

func (c Config) Float(key string, def float64) (float64, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func (c Config) Int(key string, def int) (int, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	// 1.5 这类非整数也视为非法
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if f != float64(int(f)) {
		return def, fmt.Errorf("%s: %v is not an integer", key, v)
	}
	return int(f), nil
}

func (c Config) String(key string, def string) (string, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

package smoke

import "sync/atomic"

// atomicPath хранит путь текущей страницы для обработчика консоли.
type atomicPath struct {
	v atomic.Value
}

func (p *atomicPath) Store(path string) { p.v.Store(path) }

func (p *atomicPath) Load() string {
	s, _ := p.v.Load().(string) //nolint:errcheck // пустая строка до первой страницы
	return s
}

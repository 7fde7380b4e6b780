// Package imagegen 实现图像生成编排
package imagegen

import (
	"sort"
)

// Registry 提供商注册表
// 启动时构建，之后只读，无需加锁
type Registry struct {
	providers map[string]Provider
}

// NewRegistry 创建注册表
func NewRegistry(providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Lookup 按名称查找提供商
func (r *Registry) Lookup(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names 返回已注册的提供商名称（有序）
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

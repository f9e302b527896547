package strategy

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry 策略名到工厂的映射，由宿主创建后传给调度器
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry 注册所有内置策略
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	if err := r.Register(HighConfidenceFactory()); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Register(f Factory) error {
	if f.Name == "" {
		return errors.New("strategy factory has no name")
	}
	if f.New == nil {
		return fmt.Errorf("strategy %s has no constructor", f.Name)
	}
	if f.PollInterval <= 0 {
		return fmt.Errorf("strategy %s poll interval must be positive", f.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[f.Name]; ok {
		return fmt.Errorf("strategy %s already registered", f.Name)
	}
	r.factories[f.Name] = f
	return nil
}

func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

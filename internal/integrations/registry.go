package integrations

import (
	"fmt"
	"sync"
)

type RegistryInterface interface {
	Register(provider DataSource) error
	Get(name string) (DataSource, error)
	SetActive(name string) error
	GetActive() (DataSource, error)
}

// Registry хранит зарегистрированные источники и имя активного.
type Registry struct {
	providers map[string]DataSource
	active    string
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]DataSource),
	}
}

func (r *Registry) Register(provider DataSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("источник данных '%s' уже зарегистрирован", name)
	}
	r.providers[name] = provider
	if r.active == "" {
		r.active = name
	}
	return nil
}

func (r *Registry) Get(name string) (DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("источник данных '%s' не найден", name)
	}
	return provider, nil
}

func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return fmt.Errorf("невозможно сделать активным '%s': источник не зарегистрирован", name)
	}
	r.active = name
	return nil
}

// GetActive - первый зарегистрированный источник, если SetActive не вызывался.
func (r *Registry) GetActive() (DataSource, error) {
	r.mu.RLock()
	activeName := r.active
	r.mu.RUnlock()

	if activeName == "" {
		return nil, fmt.Errorf("активный источник данных не установлен")
	}
	return r.Get(activeName)
}

// Package fallback - фиксированный демо-набор заявок. Это деградированный
// режим, а не кэш: данные никогда не смешиваются с данными сервера.
package fallback

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"civiq/internal/entities"
	"civiq/internal/lifecycle"
	"civiq/internal/view"
	apperrors "civiq/pkg/errors"
)

const Name = "demo"

//go:embed seed.yaml
var seedYAML []byte

type Provider struct {
	records []entities.Request
	now     func() time.Time
}

// New загружает встроенный демо-набор.
func New() (*Provider, error) {
	return FromYAML(seedYAML)
}

// FromYAML строит провайдер из произвольного набора; каждая запись проверяется.
func FromYAML(raw []byte) (*Provider, error) {
	var records []entities.Request
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("ошибка разбора демо-набора: %w", err)
	}
	for _, r := range records {
		if err := lifecycle.Validate(r); err != nil {
			return nil, fmt.Errorf("демо-заявка #%d: %w", r.ID, err)
		}
	}
	return &Provider{records: records, now: time.Now}, nil
}

func (p *Provider) Name() string {
	return Name
}

// FetchAll всегда возвращает исходный набор в исходном порядке.
func (p *Provider) FetchAll(ctx context.Context) ([]entities.Request, error) {
	out := make([]entities.Request, len(p.records))
	for i, r := range p.records {
		out[i] = r.Clone()
	}
	return out, nil
}

// Update не поддерживается: в демо-режиме изменения живут только в памяти консоли.
func (p *Provider) Update(ctx context.Context, id int64, req entities.Request) (entities.Request, error) {
	return entities.Request{}, fmt.Errorf("%w: демо-режим, изменения не сохраняются", apperrors.ErrAdapterUnavailable)
}

func (p *Provider) Stats(ctx context.Context) (view.DashboardStats, error) {
	return view.Dashboard(p.records, p.now()), nil
}

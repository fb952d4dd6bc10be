package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"civiq/internal/entities"
	"civiq/internal/repositories"
	"civiq/internal/session"
	apperrors "civiq/pkg/errors"
)

type memRequestRepo struct {
	mu     sync.Mutex
	rows   map[int64]entities.Request
	nextID int64
	lists  int
	last   repositories.RequestFilter
}

func newMemRequestRepo(seed ...entities.Request) *memRequestRepo {
	r := &memRequestRepo{rows: map[int64]entities.Request{}, nextID: 1}
	for _, req := range seed {
		r.rows[req.ID] = req.Clone()
		if req.ID >= r.nextID {
			r.nextID = req.ID + 1
		}
	}
	return r
}

func (m *memRequestRepo) List(_ context.Context, f repositories.RequestFilter) ([]entities.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	m.last = f
	out := make([]entities.Request, 0, len(m.rows))
	for _, r := range m.rows {
		if !session.IsWildcard(f.Scope) && r.Department != f.Scope {
			continue
		}
		if len(f.Statuses) > 0 {
			ok := false
			for _, s := range f.Statuses {
				ok = ok || s == r.Status
			}
			if !ok {
				continue
			}
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRequestRepo) FindByID(_ context.Context, id int64) (entities.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return entities.Request{}, apperrors.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *memRequestRepo) Create(_ context.Context, req entities.Request) (entities.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.nextID
	m.nextID++
	m.rows[req.ID] = req.Clone()
	return req, nil
}

func (m *memRequestRepo) Update(_ context.Context, id int64, fn repositories.MutateFunc) (entities.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[id]
	if !ok {
		return entities.Request{}, apperrors.ErrNotFound
	}
	next, err := fn(stored.Clone())
	if err != nil {
		return entities.Request{}, err
	}
	m.rows[id] = next.Clone()
	return next, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	default:
		c.data[key] = "?"
	}
	c.ttl[key] = expiration
	return nil
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		delete(c.ttl, k)
	}
	return nil
}

func (c *memCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int64(len(c.data[key])) + 1
	c.data[key] = strings.Repeat("x", int(n))
	return n, nil
}

func (c *memCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; !ok {
		return false, nil
	}
	c.ttl[key] = expiration
	return true, nil
}

func (c *memCache) Exists(_ context.Context, key string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

type memCredentials struct {
	mu    sync.Mutex
	users map[string]entities.Credential
}

func (m *memCredentials) Create(_ context.Context, cred entities.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = map[string]entities.Credential{}
	}
	key := strings.ToLower(cred.Username)
	if _, ok := m.users[key]; ok {
		return apperrors.ErrUsernameTaken
	}
	m.users[key] = cred
	return nil
}

func (m *memCredentials) FindByUsername(_ context.Context, username string) (entities.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.users[strings.ToLower(username)]
	if !ok {
		return entities.Credential{}, apperrors.ErrNotFound
	}
	return c, nil
}

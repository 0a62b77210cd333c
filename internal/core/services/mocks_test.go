package services

import (
	"context"
	stdsync "sync"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// mockBackend implements driven.ContentBackend. Nil function fields fall
// back to a success response.
type mockBackend struct {
	mu       stdsync.Mutex
	requests []domain.ListRequest
	removed  []string
	added    [][]domain.Record

	listFunc   func(req domain.ListRequest) (*domain.ListResponse, error)
	addFunc    func(records []domain.Record) (*domain.MutationResult, error)
	removeFunc func(kind domain.ContentType, id string) (*domain.RemovalResult, error)
	infoFunc   func() (*domain.BackendInfo, error)

	events chan domain.Event
}

func newMockBackend() *mockBackend {
	return &mockBackend{events: make(chan domain.Event, 16)}
}

func (m *mockBackend) List(_ context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.listFunc
	m.mu.Unlock()
	if fn == nil {
		return &domain.ListResponse{Success: true}, nil
	}
	return fn(req)
}

func (m *mockBackend) Add(_ context.Context, records []domain.Record) (*domain.MutationResult, error) {
	m.mu.Lock()
	m.added = append(m.added, records)
	fn := m.addFunc
	m.mu.Unlock()
	if fn == nil {
		return &domain.MutationResult{Success: true}, nil
	}
	return fn(records)
}

func (m *mockBackend) RemoveDocument(_ context.Context, id string) (*domain.RemovalResult, error) {
	return m.remove(domain.ContentTypeDocument, id)
}

func (m *mockBackend) RemoveImage(_ context.Context, id string) (*domain.RemovalResult, error) {
	return m.remove(domain.ContentTypeImage, id)
}

func (m *mockBackend) remove(kind domain.ContentType, id string) (*domain.RemovalResult, error) {
	m.mu.Lock()
	m.removed = append(m.removed, string(kind)+":"+id)
	fn := m.removeFunc
	m.mu.Unlock()
	if fn == nil {
		return &domain.RemovalResult{Status: domain.RemovalSuccess}, nil
	}
	return fn(kind, id)
}

func (m *mockBackend) Info(_ context.Context) (*domain.BackendInfo, error) {
	if m.infoFunc == nil {
		return &domain.BackendInfo{}, nil
	}
	return m.infoFunc()
}

func (m *mockBackend) Events() <-chan domain.Event {
	return m.events
}

func (m *mockBackend) Close() error {
	return nil
}

func (m *mockBackend) listRequests() []domain.ListRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ListRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *mockBackend) removedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.removed))
	copy(out, m.removed)
	return out
}

// serveRecords makes the mock page through a fixed record set,
// honouring limit and offset like a real backend.
func (m *mockBackend) serveRecords(all []domain.Record) {
	m.listFunc = func(req domain.ListRequest) (*domain.ListResponse, error) {
		start := req.Offset
		if start > len(all) {
			start = len(all)
		}
		end := start + req.Limit
		if end > len(all) {
			end = len(all)
		}
		items := make([]domain.Record, end-start)
		copy(items, all[start:end])
		return &domain.ListResponse{
			Success:    true,
			Items:      items,
			Pagination: domain.Pagination{Count: len(all), Offset: req.Offset},
		}, nil
	}
}

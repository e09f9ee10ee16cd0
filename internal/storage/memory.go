package storage

import (
	"context"
	"sync"

	"municipal/pkg/platform/sentinel"
)

// Memory keeps records in process. Predicates and unique checks are linear scans.
type Memory[T any] struct {
	mu     sync.RWMutex
	table  Table[T]
	rows   map[int64]T
	order  []int64
	nextID int64
}

// NewMemory constructs an empty in-memory store for the described table.
func NewMemory[T any](table Table[T]) *Memory[T] {
	return &Memory[T]{table: table, rows: make(map[int64]T)}
}

func (s *Memory[T]) GetAll(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out, nil
}

func (s *Memory[T]) GetByID(_ context.Context, id int64) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.rows[id]; ok {
		return rec, nil
	}
	var zero T
	return zero, sentinel.ErrNotFound
}

func (s *Memory[T]) AnyWhere(_ context.Context, p Predicate) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		rec := s.rows[id]
		if s.table.matches(&rec, p) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Memory[T]) Insert(_ context.Context, rec T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(&rec, 0); err != nil {
		var zero T
		return zero, err
	}
	s.nextID++
	*s.table.ID(&rec) = s.nextID
	*s.table.Version(&rec) = 1
	s.rows[s.nextID] = rec
	s.order = append(s.order, s.nextID)
	return rec, nil
}

func (s *Memory[T]) Update(_ context.Context, rec T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	id := *s.table.ID(&rec)
	current, ok := s.rows[id]
	if !ok {
		return zero, sentinel.ErrNotFound
	}
	if *s.table.Version(&current) != *s.table.Version(&rec) {
		return zero, sentinel.ErrConflict
	}
	if err := s.checkUnique(&rec, id); err != nil {
		return zero, err
	}
	*s.table.Version(&rec)++
	s.rows[id] = rec
	return rec, nil
}

func (s *Memory[T]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return nil
	}
	delete(s.rows, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// checkUnique must be called with mu held.
func (s *Memory[T]) checkUnique(rec *T, selfID int64) error {
	for _, field := range s.table.Unique {
		v, ok := s.table.value(rec, field)
		if !ok || v == nil || v == "" {
			continue
		}
		p := Where(field, v).Excluding(selfID)
		for _, id := range s.order {
			other := s.rows[id]
			if s.table.matches(&other, p) {
				return &DuplicateKeyError{Table: s.table.Name, Field: field}
			}
		}
	}
	return nil
}

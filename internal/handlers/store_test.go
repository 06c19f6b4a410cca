package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mangashelf/mangashelf/supabase"
)

// memoryStore applies the same filters PostgREST would, over JSON rows kept in memory.
// Order is ignored; rows come back in insertion order.
type memoryStore struct {
	mu     sync.Mutex
	tables map[string][]map[string]any
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tables: make(map[string][]map[string]any)}
}

func (s *memoryStore) seed(t *testing.T, table string, records ...any) {
	t.Helper()
	for _, record := range records {
		require.NoError(t, s.Insert(context.Background(), table, record))
	}
}

func (s *memoryStore) rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.tables[table]...)
}

func (s *memoryStore) List(_ context.Context, table string, query supabase.Query, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	matched := []map[string]any{}
	for _, row := range s.tables[table] {
		if matches(row, query) {
			matched = append(matched, row)
		}
	}

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[query.Offset:]
		}
	}
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	payload, err := json.Marshal(matched)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func (s *memoryStore) Get(ctx context.Context, table, column, value string, out any) error {
	var rows []json.RawMessage
	if err := s.List(ctx, table, supabase.Query{Eq: map[string]string{column: value}, Limit: 1}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: %w", table, supabase.ErrNotFound)
	}
	return json.Unmarshal(rows[0], out)
}

func (s *memoryStore) Insert(_ context.Context, table string, record any) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tables[table] = append(s.tables[table], row)
	return nil
}

func (s *memoryStore) Update(_ context.Context, table, id string, record any) error {
	patch, err := toRow(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, row := range s.tables[table] {
		if row["id"] == id {
			for key, value := range patch {
				row[key] = value
			}
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", table, id, supabase.ErrNotFound)
}

func (s *memoryStore) Delete(_ context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	kept := s.tables[table][:0]
	for _, row := range s.tables[table] {
		if row["id"] != id {
			kept = append(kept, row)
		}
	}
	if len(kept) == len(s.tables[table]) {
		return fmt.Errorf("%s %s: %w", table, id, supabase.ErrNotFound)
	}
	s.tables[table] = kept
	return nil
}

func toRow(record any) (map[string]any, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var row map[string]any
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func matches(row map[string]any, query supabase.Query) bool {
	for column, value := range query.Eq {
		if fmt.Sprint(row[column]) != value {
			return false
		}
	}
	for column, value := range query.ILike {
		text, _ := row[column].(string)
		if !strings.Contains(strings.ToLower(text), strings.ToLower(value)) {
			return false
		}
	}
	for column, list := range query.In {
		found := false
		for _, value := range list {
			if fmt.Sprint(row[column]) == value {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	for column, value := range query.Contains {
		items, _ := row[column].([]any)
		found := false
		for _, item := range items {
			if fmt.Sprint(item) == value {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

var errStoreDown = errors.New("store unavailable")

package settings

import (
	"context"
	"sort"
	"sync"

	"github.com/folio-cms/folio/storage/model"
)

// memStore is an in-memory model.SettingsStore counting full scans
type memStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]model.Setting
	lists  int
	err    error
}

func newMemStore(seed ...model.Setting) *memStore {
	s := &memStore{rows: make(map[string]model.Setting)}
	_ = s.Upsert(context.Background(), seed)
	return s
}

func (s *memStore) Get(_ context.Context, key string) (*model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	row, ok := s.rows[key]
	if !ok {
		return nil, model.NotFoundErrorFmt("setting not found: %s", key)
	}
	return &row, nil
}

func (s *memStore) List(_ context.Context, filter model.SettingsFilter) ([]model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.err != nil {
		return nil, s.err
	}
	var list []model.Setting
	for _, row := range s.rows {
		if filter.Group != nil && row.Group != *filter.Group {
			continue
		}
		if filter.PublicOnly && !row.IsPublic {
			continue
		}
		list = append(list, row)
	}
	sort.Slice(
		list, func(i, j int) bool {
			if list[i].SortOrder != list[j].SortOrder {
				return list[i].SortOrder < list[j].SortOrder
			}
			return list[i].Key < list[j].Key
		},
	)
	return list, nil
}

func (s *memStore) Save(_ context.Context, setting *model.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if existing, ok := s.rows[setting.Key]; ok && existing.ID != setting.ID {
		return model.AlreadyExistsErrorFmt("setting already exists: %s", setting.Key)
	}
	if setting.ID == 0 {
		s.nextID++
		setting.ID = s.nextID
	}
	s.rows[setting.Key] = *setting
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.rows[key]
	delete(s.rows, key)
	return ok, nil
}

func (s *memStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rows)), s.err
}

func (s *memStore) Upsert(_ context.Context, settings []model.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, row := range settings {
		if existing, ok := s.rows[row.Key]; ok {
			row.ID = existing.ID
		} else {
			s.nextID++
			row.ID = s.nextID
		}
		s.rows[row.Key] = row
	}
	return nil
}

func (s *memStore) scans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

// fakeBlobs records deleted paths and serves URLs below /storage
type fakeBlobs struct {
	deleted []string
	err     error
}

func (b *fakeBlobs) URL(path string) string {
	return "/storage/" + path
}

func (b *fakeBlobs) Delete(_ context.Context, path string) error {
	b.deleted = append(b.deleted, path)
	return b.err
}

func strPtr(s string) *string {
	return &s
}

package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"braincells-be/internal/entity"
	"braincells-be/internal/repository/contract"
	"braincells-be/internal/repository/specification"
	"braincells-be/internal/repository/unitofwork"
	"braincells-be/pkg/events"
	"braincells-be/pkg/llm"
	"braincells-be/pkg/vectorindex"
)

// fakeStore is a relational store with transaction snapshots. It understands
// the specifications the services use.
type fakeStore struct {
	mu    sync.Mutex
	rows  map[string]entity.Braincell
	index vectorindex.Index
}

func newFakeStore(index vectorindex.Index) *fakeStore {
	return &fakeStore{rows: map[string]entity.Braincell{}, index: index}
}

func (s *fakeStore) put(b entity.Braincell) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[b.Id] = b
}

func (s *fakeStore) get(id string) (entity.Braincell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	return b, ok
}

func (s *fakeStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{store: s}
}

type fakeUoW struct {
	store     *fakeStore
	snapshot  map[string]entity.Braincell
	inTx      bool
	committed bool
}

func (u *fakeUoW) Begin(ctx context.Context) error {
	if u.inTx {
		return errors.New("transaction already started")
	}
	u.store.mu.Lock()
	u.snapshot = make(map[string]entity.Braincell, len(u.store.rows))
	for k, v := range u.store.rows {
		u.snapshot[k] = v
	}
	u.store.mu.Unlock()
	u.inTx = true
	return nil
}

func (u *fakeUoW) Commit() error {
	if !u.inTx {
		return errors.New("no transaction to commit")
	}
	u.inTx = false
	u.committed = true
	return nil
}

func (u *fakeUoW) Rollback() error {
	if !u.inTx {
		return errors.New("no transaction to rollback")
	}
	u.store.mu.Lock()
	u.store.rows = u.snapshot
	u.store.mu.Unlock()
	u.inTx = false
	return nil
}

func (u *fakeUoW) BraincellRepository() contract.BraincellRepository {
	return &fakeRepo{store: u.store}
}

func (u *fakeUoW) VectorIndex() vectorindex.Index {
	return u.store.index
}

type fakeRepo struct {
	store *fakeStore
}

func (r *fakeRepo) Create(ctx context.Context, b *entity.Braincell) error {
	r.store.put(*b)
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, b *entity.Braincell) error {
	existing, ok := r.store.get(b.Id)
	if !ok {
		return nil
	}
	existing.Title = b.Title
	existing.Content = b.Content
	existing.UpdatedAt = b.UpdatedAt
	r.store.put(existing)
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.rows, id)
	return nil
}

func (r *fakeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Braincell, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Braincell, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*entity.Braincell
	for _, row := range r.store.rows {
		if matchesSpecs(row, specs) {
			b := row
			result = append(result, &b)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok && o.Field == "created_at" {
			sort.SliceStable(result, func(i, j int) bool {
				if o.Desc {
					return result[i].CreatedAt.After(result[j].CreatedAt)
				}
				return result[i].CreatedAt.Before(result[j].CreatedAt)
			})
		}
	}
	return result, nil
}

func (r *fakeRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchesSpecs(b entity.Braincell, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if b.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range s.IDs {
				if id == b.Id {
					found = true
				}
			}
			if !found {
				return false
			}
		case specification.UserOwnedBy:
			if b.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

// failingIndex wraps an index and fails writes.
type failingIndex struct {
	vectorindex.Index
}

func (failingIndex) Upsert(ctx context.Context, vectors ...vectorindex.Vector) error {
	return errors.New("index unavailable")
}

func (failingIndex) Delete(ctx context.Context, id string) error {
	return errors.New("index unavailable")
}

type fakeEmbedder struct {
	mu     sync.Mutex
	inputs []string
	err    error
}

func (e *fakeEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inputs = append(e.inputs, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0, 0}, nil
}

type fakeLLM struct {
	history []llm.Message
	tokens  []string
	err     error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	f.history = history
	if f.err != nil {
		return nil, f.err
	}
	return &sliceStream{tokens: f.tokens}, nil
}

type sliceStream struct {
	tokens []string
	closed bool
}

func (s *sliceStream) Recv() (string, error) {
	if len(s.tokens) == 0 {
		return "", io.EOF
	}
	t := s.tokens[0]
	s.tokens = s.tokens[1:]
	return t, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() {}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

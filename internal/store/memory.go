package store

import (
	"context"
	"encoding/json"
	"sync"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/types"
)

// MemoryStore is an in-process ProjectStore used for tests and dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[projectKey]*types.Project
}

type projectKey struct {
	owner int64
	mint  string
}

var _ interfaces.ProjectStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[projectKey]*types.Project)}
}

func (s *MemoryStore) Get(ctx context.Context, ownerID int64, tokenMint string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectKey{ownerID, tokenMint}]
	if !ok {
		return nil, types.ErrProjectNotFound
	}
	return clone(p), nil
}

func (s *MemoryStore) Upsert(ctx context.Context, project *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[projectKey{project.OwnerID, project.TokenMint}] = clone(project)
	return nil
}

func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID int64) ([]types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Project
	for k, p := range s.projects {
		if k.owner == ownerID {
			out = append(out, *clone(p))
		}
	}
	return out, nil
}

// clone keeps callers from mutating shared state through returned pointers.
func clone(p *types.Project) *types.Project {
	b, _ := json.Marshal(p)
	var c types.Project
	_ = json.Unmarshal(b, &c)
	return &c
}

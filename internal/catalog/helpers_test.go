package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// memStore is an in-memory RecordStore. Get can be held back per id with a
// gate to force responses to arrive out of order.
type memStore struct {
	mu        sync.Mutex
	records   map[string]types.Record
	order     []string
	gets      int
	updates   int
	listErr   error
	getErr    error
	updateErr error
	ignore    bool // Update reports success without applying the patch
	gates     map[string]chan struct{}
	entered   chan string
}

func newMemStore(records ...types.Record) *memStore {
	m := &memStore{
		records: make(map[string]types.Record),
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 16),
	}
	for _, r := range records {
		r.Normalize()
		m.records[r.ID] = r
		m.order = append(m.order, r.ID)
	}
	return m
}

func (m *memStore) ListAll(ctx context.Context) ([]types.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]types.Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id].Lightweight())
	}
	return out, nil
}

func (m *memStore) Get(ctx context.Context, id string) (types.Record, error) {
	m.mu.Lock()
	m.gets++
	gate := m.gates[id]
	m.mu.Unlock()

	if gate != nil {
		m.entered <- id
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return types.Record{}, m.getErr
	}
	r, ok := m.records[id]
	if !ok {
		return types.Record{}, fmt.Errorf("getting %s: %w", id, types.ErrNotFound)
	}
	return r, nil
}

func (m *memStore) Update(ctx context.Context, id string, patch types.RecordPatch) (types.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updateErr != nil {
		return types.Record{}, m.updateErr
	}
	r, ok := m.records[id]
	if !ok {
		return types.Record{}, fmt.Errorf("updating %s: %w", id, types.ErrNotFound)
	}
	if !m.ignore {
		patch.Apply(&r)
		m.records[id] = r
	}
	return r, nil
}

func (m *memStore) set(r types.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.Normalize()
	m.records[r.ID] = r
}

func (m *memStore) hold(id string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gates[id] = gate
	return gate
}

func (m *memStore) calls() (gets, updates int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets, m.updates
}

// memFavorites is an in-memory FavoritesStore.
type memFavorites struct {
	mu      sync.Mutex
	ids     []string
	saves   int
	saveErr error
}

func (m *memFavorites) Load(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...), nil
}

func (m *memFavorites) Save(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.ids = append([]string(nil), ids...)
	return nil
}

func ids(records []types.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func duneCatalog() []types.Record {
	return []types.Record{
		{ID: "1", Title: "Dune", Box: "3", LoanStatus: types.StatusAvailable},
		{ID: "2", Title: "Dune Messiah", Box: "1", LoanedTo: "Sam", LoanStatus: "loaned to Sam"},
	}
}

func libraryCatalog() []types.Record {
	records := []types.Record{
		{ID: "a", Title: "Neuromancer", Category: "SF", Box: "10"},
		{ID: "b", Title: "Cien años de soledad", Category: "Novela", Box: "2"},
		{ID: "c", Title: "Dune", Category: "SF", Box: "1"},
		{ID: "d", Title: "El túnel", Category: "Novela", Box: "2", LoanedTo: "Ana"},
		{ID: "e", Title: "Dune Messiah", Category: "SF", Box: "10", LoanedTo: "Sam"},
	}
	for i := range records {
		records[i].Normalize()
	}
	return records
}

package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/openpic/openpic/internal/database"
	"github.com/openpic/openpic/internal/ledger"
)

// fakeGate is an in-memory ledger with injectable failures. Reservation
// semantics (one winner per fingerprint) are covered by the ledger package's
// own tests; here it drives coordinator behavior.
type fakeGate struct {
	mu         sync.Mutex
	entries    map[string]string
	reserveErr error
	confirmErr error
}

func newFakeGate() *fakeGate {
	return &fakeGate{entries: make(map[string]string)}
}

func (g *fakeGate) Reserve(ctx context.Context, fp string) (ledger.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reserveErr != nil {
		return ledger.AlreadyKnown, g.reserveErr
	}
	if _, ok := g.entries[fp]; ok {
		return ledger.AlreadyKnown, nil
	}
	g.entries[fp] = "reserved"
	return ledger.Reserved, nil
}

func (g *fakeGate) Confirm(ctx context.Context, fp string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.confirmErr != nil {
		return g.confirmErr
	}
	g.entries[fp] = "confirmed"
	return nil
}

func (g *fakeGate) Exists(ctx context.Context, fp string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.entries[fp]
	return ok, nil
}

type fakePhotoStore struct {
	mu        sync.Mutex
	records   map[string]database.PhotoRecord
	requeued  []string
	insertErr error
	existsErr error
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{records: make(map[string]database.PhotoRecord)}
}

func (s *fakePhotoStore) Insert(ctx context.Context, rec database.PhotoRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if _, ok := s.records[rec.PhotoID]; ok {
		return false, nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records[rec.PhotoID] = rec
	return true, nil
}

func (s *fakePhotoStore) Exists(ctx context.Context, photoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.records[photoID]
	return ok, nil
}

func (s *fakePhotoStore) ByIDs(ctx context.Context, photoIDs []string) ([]database.PhotoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.PhotoRecord
	for _, id := range photoIDs {
		if rec, ok := s.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakePhotoStore) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]database.PhotoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.PhotoRecord
	for _, rec := range s.records {
		if len(out) >= limit {
			break
		}
		if rec.Status != database.StatusPending || !rec.CreatedAt.Before(cutoff) {
			continue
		}
		if rec.RequeuedAt != nil && !rec.RequeuedAt.Before(cutoff) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *fakePhotoStore) MarkRequeued(ctx context.Context, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[photoID]
	if ok {
		now := time.Now()
		rec.RequeuedAt = &now
		s.records[photoID] = rec
	}
	s.requeued = append(s.requeued, photoID)
	return nil
}

type fakeSelfieStore struct {
	mu        sync.Mutex
	records   map[string]database.SelfieRecord
	requeued  []string
	insertErr error
	getErr    error
}

func newFakeSelfieStore() *fakeSelfieStore {
	return &fakeSelfieStore{records: make(map[string]database.SelfieRecord)}
}

func (s *fakeSelfieStore) Insert(ctx context.Context, rec database.SelfieRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if _, ok := s.records[rec.SelfieID]; ok {
		return false, nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records[rec.SelfieID] = rec
	return true, nil
}

func (s *fakeSelfieStore) Get(ctx context.Context, selfieID string) (*database.SelfieRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	rec, ok := s.records[selfieID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *fakeSelfieStore) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]database.SelfieRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.SelfieRecord
	for _, rec := range s.records {
		if len(out) >= limit {
			break
		}
		if rec.Status != database.StatusPending || !rec.CreatedAt.Before(cutoff) {
			continue
		}
		if rec.RequeuedAt != nil && !rec.RequeuedAt.Before(cutoff) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *fakeSelfieStore) MarkRequeued(ctx context.Context, selfieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[selfieID]
	if ok {
		now := time.Now()
		rec.RequeuedAt = &now
		s.records[selfieID] = rec
	}
	s.requeued = append(s.requeued, selfieID)
	return nil
}

type fakeObjectStore struct {
	mu          sync.Mutex
	objects     map[string][]byte
	presignPuts []string
	presignGets []string
	putErr      error
	presignErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) PresignPut(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presignErr != nil {
		return "", s.presignErr
	}
	s.presignPuts = append(s.presignPuts, key)
	return "https://signed.example.com/put/" + key, nil
}

func (s *fakeObjectStore) PresignGet(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presignErr != nil {
		return "", s.presignErr
	}
	s.presignGets = append(s.presignGets, key)
	return "https://signed.example.com/get/" + key, nil
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeObjectStore) ObjectURL(key string) string {
	return "https://link.example.com/bucket/" + key
}

type fakeProducer struct {
	mu      sync.Mutex
	high    []string
	low     []string
	pushErr error
}

func (p *fakeProducer) PushHighPriority(ctx context.Context, fp string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushErr != nil {
		return p.pushErr
	}
	p.high = append(p.high, fp)
	return nil
}

func (p *fakeProducer) PushLowPriority(ctx context.Context, fp string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushErr != nil {
		return p.pushErr
	}
	p.low = append(p.low, fp)
	return nil
}

var errBackendDown = errors.New("backend unavailable")

// newTestCoordinator wires a coordinator over fresh fakes.
func newTestCoordinator() (*Coordinator, *fakeGate, *fakePhotoStore, *fakeSelfieStore, *fakeObjectStore, *fakeProducer) {
	gate := newFakeGate()
	photos := newFakePhotoStore()
	selfies := newFakeSelfieStore()
	store := newFakeObjectStore()
	producer := &fakeProducer{}
	return NewCoordinator(gate, photos, selfies, store, producer), gate, photos, selfies, store, producer
}

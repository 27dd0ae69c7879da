package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository/repositorytest"
	"github.com/oksasatya/studypal/pkg/apperror"
	"github.com/oksasatya/studypal/pkg/helpers"
	"github.com/oksasatya/studypal/pkg/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testSecret = "test-secret-test-secret-test-1234"

type fixture struct {
	store     *repositorytest.Store
	hasher    *helpers.BcryptHasher
	tokens    *helpers.TokenCodec
	publisher *fakePublisher
	index     *fakeIndex
	avatars   *fakeObjectStore
	metrics   *metrics.Metrics

	auth   *AuthService
	users  *UserService
	plans  *PlanService
	events *EventService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     repositorytest.NewStore(),
		hasher:    helpers.NewBcryptHasher(bcrypt.MinCost),
		tokens:    helpers.NewTokenCodec(testSecret, time.Hour),
		publisher: &fakePublisher{},
		index:     newFakeIndex(),
		avatars:   &fakeObjectStore{},
		metrics:   metrics.New(),
	}
	logger := helpers.NewDiscardLogger()
	f.auth = NewAuthService(f.store.Users(), f.hasher, f.tokens, f.publisher, f.metrics, logger)
	f.users = NewUserService(f.store.Users(), f.hasher, f.avatars, f.index, f.publisher, f.metrics, logger)
	f.plans = NewPlanService(f.store.Plans(), f.index, f.metrics, logger)
	f.events = NewEventService(f.store.Events(), f.store.Plans(), f.metrics)
	return f
}

// register creates an account and returns the identity a verified token would resolve to.
func (f *fixture) register(t *testing.T, email string) entity.Identity {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{
		Email: email, Password: "password123", FirstName: "Test", LastName: "User",
	})
	require.NoError(t, err)
	id, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	return id
}

func (f *fixture) plan(t *testing.T, owner entity.Identity, title, start, end string) *entity.Plan {
	t.Helper()
	p, err := f.plans.Create(context.Background(), owner, PlanInput{Title: &title, StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	return p
}

func ptr(s string) *string { return &s }

func requireKind(t *testing.T, want apperror.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, apperror.KindOf(err), "error: %v", err)
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

// fakeIndex records documents in memory. Search returns every indexed plan id,
// regardless of owner, so tests can check that services filter the hits.
type fakeIndex struct {
	mu      sync.Mutex
	docs    map[int64]entity.Plan
	extra   []int64
	removed []int64
	err     error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[int64]entity.Plan{}} }

func (x *fakeIndex) Index(_ context.Context, p *entity.Plan) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs[p.ID] = *p
	return nil
}

func (x *fakeIndex) Remove(_ context.Context, id int64) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	x.removed = append(x.removed, id)
	return nil
}

func (x *fakeIndex) RemoveOwner(_ context.Context, ownerID int64) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, p := range x.docs {
		if p.OwnerID == ownerID {
			delete(x.docs, id)
			x.removed = append(x.removed, id)
		}
	}
	return nil
}

func (x *fakeIndex) Search(_ context.Context, _ int64, _ string, _ int) ([]int64, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return nil, x.err
	}
	ids := make([]int64, 0, len(x.docs)+len(x.extra))
	for id := range x.docs {
		ids = append(ids, id)
	}
	return append(ids, x.extra...), nil
}

type fakeObjectStore struct {
	paths  []string
	types  []string
	bodies [][]byte
	err    error
}

func (s *fakeObjectStore) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.paths = append(s.paths, objectPath)
	s.types = append(s.types, contentType)
	s.bodies = append(s.bodies, body)
	return "https://storage.example/" + objectPath, nil
}

var errBoom = errors.New("boom")

package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comparo/backend/internal/application/chat"
	"github.com/comparo/backend/internal/domain/knowledge"
	domainStatus "github.com/comparo/backend/internal/domain/status"
	"github.com/comparo/backend/internal/infrastructure/config"
)

// stubStore 可配置的文档存储
type stubStore struct {
	knowledge.DocumentStore
	tableErr  error
	searchErr error
	hang      chan struct{}
	panicOn   string

	probed   int
	searched int
	dim      int
}

func (s *stubStore) ProbeTable(context.Context) error {
	s.probed++
	if s.panicOn == "table" {
		panic("table probe exploded")
	}
	if s.hang != nil {
		<-s.hang
	}
	return s.tableErr
}

func (s *stubStore) Search(_ context.Context, embedding []float32, _ float32, limit int) ([]*knowledge.ScoredDocument, error) {
	s.searched++
	s.dim = len(embedding)
	return nil, s.searchErr
}

type stubProber struct {
	status chat.HealthStatus
	calls  int
}

func (p *stubProber) HealthCheck(context.Context) chat.HealthStatus {
	p.calls++
	return p.status
}

type allowAll struct{ ok bool }

func (a allowAll) Authenticated(context.Context) bool { return a.ok }

func newTestChecker(store *stubStore, prober *stubProber, authenticated bool) *Checker {
	return NewChecker(store, prober, allowAll{ok: authenticated}, &config.VectorConfig{Dimension: 8}, nil)
}

func TestChecker_AllReady(t *testing.T) {
	store := &stubStore{}
	prober := &stubProber{status: chat.HealthStatus{Status: chat.HealthOK, OpenAIKeyConfigured: true}}
	c := newTestChecker(store, prober, true)

	report, err := c.CheckWithTimeout(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, domainStatus.SystemStatus{TableExists: true, FunctionExists: true, EdgeFunctionsReady: true, APIKeyConfigured: true}, report.Status)
	assert.Equal(t, domainStatus.ReadinessReady, report.Readiness)
	assert.NotEmpty(t, report.Guidance)
	assert.Equal(t, 8, store.dim)
}

func TestChecker_Partial(t *testing.T) {
	store := &stubStore{}
	prober := &stubProber{status: chat.HealthStatus{Status: chat.HealthOK, OpenAIKeyConfigured: false}}
	c := newTestChecker(store, prober, true)

	report, err := c.CheckWithTimeout(context.Background(), time.Second)
	require.NoError(t, err)
	assert.True(t, report.Status.EdgeFunctionsReady)
	assert.False(t, report.Status.APIKeyConfigured)
	assert.Equal(t, domainStatus.ReadinessPartial, report.Readiness)
}

func TestChecker_ProbeFailuresAreIndependent(t *testing.T) {
	store := &stubStore{tableErr: errors.New("relation does not exist")}
	prober := &stubProber{status: chat.HealthStatus{Status: chat.HealthUnreachable, OpenAIKeyConfigured: true, Error: "dial tcp"}}
	c := newTestChecker(store, prober, true)

	s := c.Check(context.Background())
	assert.False(t, s.TableExists)
	assert.True(t, s.FunctionExists)
	assert.False(t, s.EdgeFunctionsReady)
	assert.True(t, s.APIKeyConfigured)
	assert.Equal(t, domainStatus.ReadinessNotReady, domainStatus.Classify(s))
}

func TestChecker_ProbePanicRecovered(t *testing.T) {
	store := &stubStore{panicOn: "table"}
	prober := &stubProber{status: chat.HealthStatus{Status: chat.HealthOK, OpenAIKeyConfigured: true}}
	c := newTestChecker(store, prober, true)

	s := c.Check(context.Background())
	assert.False(t, s.TableExists)
	assert.True(t, s.FunctionExists)
	assert.Equal(t, 1, prober.calls)
}

func TestChecker_UnauthenticatedSkipsProbes(t *testing.T) {
	store := &stubStore{}
	prober := &stubProber{status: chat.HealthStatus{Status: chat.HealthOK, OpenAIKeyConfigured: true}}
	c := newTestChecker(store, prober, false)

	report, err := c.CheckWithTimeout(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, domainStatus.SystemStatus{}, report.Status)
	assert.Equal(t, domainStatus.ReadinessNotReady, report.Readiness)
	assert.Equal(t, 0, store.probed)
	assert.Equal(t, 0, store.searched)
	assert.Equal(t, 0, prober.calls)
}

func TestChecker_Timeout(t *testing.T) {
	hang := make(chan struct{})
	defer close(hang)

	store := &stubStore{hang: hang}
	prober := &stubProber{status: chat.HealthStatus{Status: chat.HealthOK, OpenAIKeyConfigured: true}}
	c := newTestChecker(store, prober, true)

	start := time.Now()
	report, err := c.CheckWithTimeout(context.Background(), 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrCheckTimeout)
	assert.Equal(t, "la vérification a pris trop de temps, veuillez réessayer", err.Error())
	assert.Equal(t, domainStatus.SystemStatus{}, report.Status)
	assert.Less(t, time.Since(start), time.Second)
}

func TestChecker_CallerCancelIsNotTimeout(t *testing.T) {
	hang := make(chan struct{})
	defer close(hang)

	store := &stubStore{hang: hang}
	prober := &stubProber{status: chat.HealthStatus{Status: chat.HealthOK, OpenAIKeyConfigured: true}}
	c := newTestChecker(store, prober, true)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	report, err := c.CheckWithTimeout(ctx, 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrCheckTimeout)
	assert.Equal(t, domainStatus.SystemStatus{}, report.Status)
}

func TestContextAuthenticator(t *testing.T) {
	a := NewContextAuthenticator()
	assert.False(t, a.Authenticated(context.Background()))
	assert.True(t, a.Authenticated(WithAdmin(context.Background())))
}

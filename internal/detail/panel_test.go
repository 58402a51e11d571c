package detail

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/acheong08/neuromap/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type reply struct {
	details *models.NodeDetailsResponse
	err     error
}

// gatedFetcher blocks each request until the test releases it by label
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan reply
	started chan string
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		gates:   make(map[string]chan reply),
		started: make(chan string, 16),
	}
}

func (f *gatedFetcher) gate(label string) chan reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[label]
	if !ok {
		ch = make(chan reply, 1)
		f.gates[label] = ch
	}
	return ch
}

func (f *gatedFetcher) RequestNodeDetails(ctx context.Context, label, _ string) (*models.NodeDetailsResponse, error) {
	f.started <- label
	select {
	case r := <-f.gate(label):
		return r.details, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) release(label string, r reply) {
	f.gate(label) <- r
}

type viewLog struct {
	mu    sync.Mutex
	views []View
}

func (l *viewLog) record(v View) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.views = append(l.views, v)
}

func (l *viewLog) all() []View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]View(nil), l.views...)
}

func summary(s string) *models.NodeDetailsResponse {
	return &models.NodeDetailsResponse{Summary: s}
}

func TestPanelAppliesOnlyLatest(t *testing.T) {
	fetcher := newGatedFetcher()
	log := &viewLog{}
	p := NewPanel(context.Background(), fetcher, log.record, nil)

	p.Open(models.RoadmapNode{ID: "a", Label: "A"})
	require.Equal(t, "A", <-fetcher.started)
	p.Open(models.RoadmapNode{ID: "b", Label: "B"})
	require.Equal(t, "B", <-fetcher.started)

	// b finishes first, then the stale a
	fetcher.release("B", reply{details: summary("about b")})
	fetcher.release("A", reply{details: summary("about a")})
	p.Wait()

	v := p.View()
	assert.Equal(t, Loaded, v.State)
	assert.Equal(t, "b", v.Node.ID)
	assert.Equal(t, "about b", v.Details.Summary)

	for _, seen := range log.all() {
		if seen.Details != nil {
			assert.NotEqual(t, "about a", seen.Details.Summary, "stale details leaked")
		}
	}
}

func TestPanelStaleFinishingLast(t *testing.T) {
	fetcher := newGatedFetcher()
	p := NewPanel(context.Background(), fetcher, nil, nil)

	p.Open(models.RoadmapNode{ID: "a", Label: "A"})
	<-fetcher.started
	fetcher.release("A", reply{details: summary("about a")})
	p.Wait()

	p.Open(models.RoadmapNode{ID: "b", Label: "B"})
	<-fetcher.started
	assert.Equal(t, Loading, p.View().State)
	assert.Equal(t, "b", p.View().Node.ID)

	fetcher.release("B", reply{details: summary("about b")})
	p.Wait()
	assert.Equal(t, "about b", p.View().Details.Summary)
}

func TestPanelCloseDropsInFlight(t *testing.T) {
	fetcher := newGatedFetcher()
	log := &viewLog{}
	p := NewPanel(context.Background(), fetcher, log.record, nil)

	p.Open(models.RoadmapNode{ID: "a", Label: "A"})
	<-fetcher.started
	p.Close()
	fetcher.release("A", reply{details: summary("about a")})
	p.Wait()

	assert.Equal(t, Closed, p.View().State)
	assert.Nil(t, p.View().Node)

	views := log.all()
	require.Len(t, views, 2)
	assert.Equal(t, Loading, views[0].State)
	assert.Equal(t, Closed, views[1].State)
}

func TestPanelFailure(t *testing.T) {
	fetcher := newGatedFetcher()
	p := NewPanel(context.Background(), fetcher, nil, nil)
	boom := errors.New("boom")

	p.Open(models.RoadmapNode{ID: "a", Label: "A"})
	<-fetcher.started
	fetcher.release("A", reply{err: boom})
	p.Wait()

	v := p.View()
	assert.Equal(t, Failed, v.State)
	assert.ErrorIs(t, v.Err, boom)
	assert.Nil(t, v.Details)
	assert.Equal(t, "a", v.Node.ID)
}

func TestPanelContextCancelEndsFetch(t *testing.T) {
	fetcher := newGatedFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPanel(ctx, fetcher, nil, nil)

	p.Open(models.RoadmapNode{ID: "a", Label: "A"})
	<-fetcher.started
	cancel()
	p.Wait()

	assert.Equal(t, Failed, p.View().State)
	assert.ErrorIs(t, p.View().Err, context.Canceled)
}

func TestStateText(t *testing.T) {
	tests := map[State]string{
		Closed:    "closed",
		Loading:   "loading",
		Loaded:    "loaded",
		Failed:    "failed",
		State(42): "unknown",
	}
	for state, want := range tests {
		text, err := state.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, want, string(text))
	}
}

func TestStateUnmarshalText(t *testing.T) {
	var s State
	require.NoError(t, s.UnmarshalText([]byte("loaded")))
	assert.Equal(t, Loaded, s)
	assert.Error(t, s.UnmarshalText([]byte("gone")))
}

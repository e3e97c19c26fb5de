package cwtest

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/yacchi/clausewitz/source"
	"github.com/yacchi/clausewitz/watcher"
)

// SourceFactory creates a Source holding data. It is called once per
// subtest so tests do not share state.
type SourceFactory func(data []byte) source.Source

// NotExistFactory creates a Source that points to a missing resource.
type NotExistFactory func() source.Source

// SourceTesterOption configures SourceTester behavior.
type SourceTesterOption func(*SourceTester)

// WithNotExistFactory enables the missing-resource test.
func WithNotExistFactory(factory NotExistFactory) SourceTesterOption {
	return func(st *SourceTester) {
		st.notExistFactory = factory
	}
}

// SourceTester verifies source.Source implementations.
type SourceTester struct {
	t               *testing.T
	factory         SourceFactory
	notExistFactory NotExistFactory
}

// NewSourceTester creates a SourceTester for factory.
func NewSourceTester(t *testing.T, factory SourceFactory, opts ...SourceTesterOption) *SourceTester {
	st := &SourceTester{t: t, factory: factory}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// TestAll runs all standard compliance tests.
func (st *SourceTester) TestAll() {
	st.t.Run("Load", st.testLoad)
	st.t.Run("LoadCancelled", st.testLoadCancelled)
	st.t.Run("CanSave", st.testCanSave)
	st.t.Run("Watch", st.testWatch)
	st.t.Run("NotExist", st.testNotExist)
}

var sampleSave = []byte("date=\"2200.01.01\"\nplayer={ { name=\"unknown\" country=0 } }\n")

func (st *SourceTester) testLoad(t *testing.T) {
	s := st.factory(sampleSave)
	data, err := s.Load(context.Background())
	requireNoError(t, err, "Load() error = %v", err)
	check(t, string(data) == string(sampleSave), "Load() = %q, want %q", data, sampleSave)
}

func (st *SourceTester) testLoadCancelled(t *testing.T) {
	s := st.factory(sampleSave)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Load(ctx)
	check(t, errors.Is(err, context.Canceled), "Load(cancelled) error = %v, want context.Canceled", err)
}

func (st *SourceTester) testCanSave(t *testing.T) {
	s := st.factory(sampleSave)
	ctx := context.Background()
	_, err := s.Load(ctx)
	requireNoError(t, err, "Load() error = %v", err)

	updated := []byte("date=\"2200.02.01\"\n")
	err = s.Save(ctx, func(current []byte) ([]byte, error) {
		return updated, nil
	})

	if !s.CanSave() {
		check(t, errors.Is(err, source.ErrSaveNotSupported),
			"CanSave() = false but Save() error = %v, want ErrSaveNotSupported", err)
		return
	}
	requireNoError(t, err, "Save() error = %v", err)
	data, err := s.Load(ctx)
	requireNoError(t, err, "Load() after Save error = %v", err)
	check(t, string(data) == string(updated), "Load() after Save = %q, want %q", data, updated)
}

func (st *SourceTester) testWatch(t *testing.T) {
	s := st.factory(sampleSave)
	ws, ok := s.(source.Watchable)
	if !ok {
		t.Skip("source does not implement source.Watchable")
	}

	w := ws.Watch()
	require(t, w != nil, "Watch() returned nil")
	check(t, w.Results() == nil, "Results() before Start should be nil")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := watcher.NewWatchConfig(watcher.WithPollInterval(10 * time.Millisecond))
	requireNoError(t, w.Start(ctx, cfg), "Start() error")
	results := w.Results()
	require(t, results != nil, "Results() after Start is nil")

	if w.Type() != watcher.TypeNoop {
		select {
		case r := <-results:
			requireNoError(t, r.Error, "first result error = %v", r.Error)
			check(t, string(r.Data) == string(sampleSave), "first result = %q, want the loaded data", r.Data)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the first result")
		}
	}

	requireNoError(t, w.Stop(context.Background()), "Stop() error")
}

func (st *SourceTester) testNotExist(t *testing.T) {
	if st.notExistFactory == nil {
		t.Skip("NotExistFactory not provided")
	}
	_, err := st.notExistFactory().Load(context.Background())
	check(t, errors.Is(err, fs.ErrNotExist), "Load() error = %v, want fs.ErrNotExist", err)
}

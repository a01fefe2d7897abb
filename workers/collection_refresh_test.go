package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingFetcher struct {
	calls atomic.Int32
	done  chan struct{}
}

func (f *countingFetcher) FetchCollection(ctx context.Context) {
	if f.calls.Add(1) == 1 {
		close(f.done)
	}
}

type staticIdentity bool

func (i staticIdentity) Identified() bool { return bool(i) }

func TestCollectionRefreshWorkerRunsFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &countingFetcher{done: make(chan struct{})}
	w := NewCollectionRefreshWorker(f, staticIdentity(true), time.Hour).RunImmediately()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-f.done:
	case <-time.After(5 * time.Second):
		t.Fatal("expected the refresh job to run")
	}
}

func TestCollectionRefreshWorkerSkipsWithoutIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &countingFetcher{done: make(chan struct{})}
	w := NewCollectionRefreshWorker(f, staticIdentity(false), 20*time.Millisecond).RunImmediately()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if got := f.calls.Load(); got != 0 {
		t.Fatalf("expected no fetch without an identified user, got %d", got)
	}
}

func TestCollectionRefreshWorkerDisabled(t *testing.T) {
	f := &countingFetcher{done: make(chan struct{})}
	w := NewCollectionRefreshWorker(f, nil, 0)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if w.sched != nil {
		t.Fatal("expected no scheduler for a zero interval")
	}
}

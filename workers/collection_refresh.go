// workers/collection_refresh.go
package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// CollectionFetcher is the part of the collection cache the worker drives.
type CollectionFetcher interface {
	FetchCollection(ctx context.Context)
}

// Identity tells the worker whether there is a user to refresh for.
type Identity interface {
	Identified() bool
}

// CollectionRefreshWorker reconciles the collection cache with the remote store on
// a fixed interval. There is no push channel, so this is the only way changes made
// elsewhere show up without a user action.
type CollectionRefreshWorker struct {
	collection CollectionFetcher
	identity   Identity
	interval   time.Duration
	immediate  bool

	sched gocron.Scheduler
}

func NewCollectionRefreshWorker(collection CollectionFetcher, identity Identity, interval time.Duration) *CollectionRefreshWorker {
	return &CollectionRefreshWorker{
		collection: collection,
		identity:   identity,
		interval:   interval,
	}
}

// RunImmediately makes the first refresh happen on Start instead of one interval later.
func (w *CollectionRefreshWorker) RunImmediately() *CollectionRefreshWorker {
	w.immediate = true
	return w
}

// Start schedules the job; it stops when ctx is done. A zero interval disables the worker.
func (w *CollectionRefreshWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		log.Println("[REFRESH] ⏸️ Collection refresh disabled")
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	opts := []gocron.JobOption{gocron.WithSingletonMode(gocron.LimitModeReschedule)}
	if w.immediate {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			if w.identity != nil && !w.identity.Identified() {
				return
			}
			w.collection.FetchCollection(ctx)
		}),
		opts...,
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule collection refresh: %w", err)
	}

	w.sched = sched
	sched.Start()
	log.Printf("🔁 Collection refresh running every %s", w.interval)

	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[REFRESH] ⚠️ scheduler shutdown: %v", err)
		}
		log.Println("⏹️ Collection refresh stopped")
	}()
	return nil
}

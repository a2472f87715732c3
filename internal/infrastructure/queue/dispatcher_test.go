package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	err    error
	block  chan struct{}
}

func (r *recordingRepo) InsertEvent(_ context.Context, ev *domain.AuthEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *ev)
	return r.err
}

func (r *recordingRepo) snapshot() []domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuthEvent(nil), r.events...)
}

func TestDispatcher_PersistsInOrderPerAccount(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	kinds := []domain.AuthEventKind{domain.EventLogin, domain.EventRefresh, domain.EventChangePassword}
	for _, k := range kinds {
		d.Record(domain.AuthEvent{ID: string(k), Kind: k, SubjectID: "acct-1"})
	}
	d.Record(domain.AuthEvent{ID: "other", Kind: domain.EventLogin, SubjectID: "acct-2"})

	cancel()
	d.Wait()

	var mine []domain.AuthEventKind
	for _, ev := range repo.snapshot() {
		if ev.SubjectID == "acct-1" {
			mine = append(mine, ev.Kind)
		}
	}
	if len(mine) != len(kinds) {
		t.Fatalf("expected %d events for acct-1, got %v", len(kinds), mine)
	}
	for i := range kinds {
		if mine[i] != kinds[i] {
			t.Fatalf("events out of order: %v", mine)
		}
	}
	if len(repo.snapshot()) != 4 {
		t.Fatalf("expected all events to be persisted, got %d", len(repo.snapshot()))
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	// Workers are not started, so the single queue fills up.
	for i := 0; i < channelBuffer+10; i++ {
		d.Record(domain.AuthEvent{Kind: domain.EventLogin, SubjectID: "acct"})
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected queue to hold %d events, got %d", channelBuffer, got)
	}
}

func TestDispatcher_RecordNeverBlocks(t *testing.T) {
	repo := &recordingRepo{block: make(chan struct{})}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			d.Record(domain.AuthEvent{Kind: domain.EventLogin, SubjectID: "acct"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a stalled repository")
	}

	close(repo.block)
	cancel()
	d.Wait()
}

func TestDispatcher_RepositoryErrorDoesNotStopWorker(t *testing.T) {
	repo := &recordingRepo{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.AuthEvent{ID: "1", SubjectID: "a"})
	d.Record(domain.AuthEvent{ID: "2", SubjectID: "a"})

	cancel()
	d.Wait()

	if got := len(repo.snapshot()); got != 2 {
		t.Fatalf("expected both events to be attempted, got %d", got)
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())
	a := d.shardIndex("acct-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("acct-42") != a {
			t.Fatalf("shard index must be stable")
		}
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard index out of range: %d", a)
	}
}

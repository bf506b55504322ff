package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/medassist/medchat/internal/model/assistant"
	"github.com/medassist/medchat/internal/service/transport"
)

type fixedSender struct{}

func (fixedSender) Send(context.Context, string) transport.Result {
	return transport.Success{Text: "ok"}
}

type blockingSender struct{ release chan struct{} }

func (b blockingSender) Send(context.Context, string) transport.Result {
	<-b.release
	return transport.Success{Text: "late"}
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClockedService(sender transport.Sender) (*Service, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewService(sender, assistant.Seed("", "", 0))
	svc.now = clock.now
	return svc, clock
}

func TestSweepClosesIdleSessions(t *testing.T) {
	svc, clock := newClockedService(fixedSender{})
	ctx := context.Background()

	idle, _ := svc.CreateSession(ctx)
	clock.advance(20 * time.Minute)
	fresh, _ := svc.CreateSession(ctx)
	clock.advance(15 * time.Minute)

	if n := svc.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("expected 1 session swept, got %d", n)
	}
	if _, err := svc.GetSession(ctx, idle.ID); err == nil {
		t.Fatal("idle session must be closed")
	}
	if _, err := svc.GetSession(ctx, fresh.ID); err != nil {
		t.Fatalf("fresh session must survive: %v", err)
	}
}

func TestSweepKeepsConnectedSessions(t *testing.T) {
	svc, clock := newClockedService(fixedSender{})
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	svc.Attach(ctx, session.ID)
	clock.advance(time.Hour)

	if n := svc.Sweep(30 * time.Minute); n != 0 {
		t.Fatalf("connected session swept, n=%d", n)
	}
}

func TestSweepKeepsLoadingSessions(t *testing.T) {
	release := make(chan struct{})
	svc, clock := newClockedService(blockingSender{release: release})
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	controller, _ := svc.Controller(ctx, session.ID)

	done := make(chan struct{})
	go func() {
		controller.Send(ctx, "slow")
		close(done)
	}()
	for !controller.IsLoading() {
		time.Sleep(time.Millisecond)
	}
	clock.advance(time.Hour)

	if n := svc.Sweep(30 * time.Minute); n != 0 {
		t.Fatalf("loading session swept, n=%d", n)
	}
	close(release)
	<-done
}

func TestRepeatedPageLoadsDoNotAccumulate(t *testing.T) {
	svc, clock := newClockedService(fixedSender{})
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		svc.CreateSession(ctx)
	}
	clock.advance(time.Hour)
	svc.Sweep(30 * time.Minute)

	if svc.Len() != 0 {
		t.Fatalf("expected every abandoned session freed, %d left", svc.Len())
	}
}

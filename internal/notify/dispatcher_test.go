package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closeWithin(t *testing.T, d *Dispatcher, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestIntents(t *testing.T) {
	got := intents(MatchCreated("m1", "alice", "bob"), testProfiles)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Recipient.ID)
	assert.Equal(t, "bob", got[0].Other.ID)
	assert.Equal(t, "bob", got[1].Recipient.ID)
	assert.Equal(t, "alice", got[1].Other.ID)

	got = intents(SuperLike("alice", "bob"), testProfiles)
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].Recipient.ID)
	assert.Equal(t, "Alice", got[0].Other.Name)

	got = intents(MessageSent("m1", "bob", "alice", "hi"), testProfiles)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Recipient.ID)
	assert.Equal(t, "hi", got[0].Preview)

	assert.Nil(t, intents(SuperLike("alice", "ghost"), testProfiles))
	assert.Nil(t, intents(Event{Kind: "unknown", Actor: "alice", Recipient: "bob"}, testProfiles))
}

func TestDispatcher_MemoryQueueDeliversToEverySender(t *testing.T) {
	email := &captureSender{name: "email"}
	push := &captureSender{name: "push", err: ErrSkipped}
	d := NewDispatcher(NewMemoryQueue(8), testProfiles, Options{Workers: 2}, email, push)
	d.Start()

	d.Publish(MatchCreated("m1", "alice", "bob"))
	d.Publish(SuperLike("bob", "alice"))
	closeWithin(t, d, 2*time.Second)

	assert.Len(t, email.intents(), 3)
	assert.Len(t, push.intents(), 3)

	recipients := map[string]int{}
	for _, in := range email.intents() {
		recipients[in.Recipient.ID+"/"+string(in.Kind)]++
	}
	assert.Equal(t, map[string]int{
		"alice/match_created": 1,
		"bob/match_created":   1,
		"alice/super_like":    1,
	}, recipients)
}

func TestDispatcher_SenderFailureDoesNotStopOthers(t *testing.T) {
	broken := &captureSender{name: "broken", err: errors.New("boom")}
	ok := &captureSender{name: "ok"}
	d := NewDispatcher(NewMemoryQueue(4), testProfiles, Options{Workers: 1}, broken, ok)
	d.Start()

	before := testutil.ToFloat64(deliveriesTotal.WithLabelValues("broken", "message_sent", "failed"))
	d.Publish(MessageSent("m1", "alice", "bob", "hello"))
	closeWithin(t, d, 2*time.Second)

	assert.Len(t, ok.intents(), 1)
	after := testutil.ToFloat64(deliveriesTotal.WithLabelValues("broken", "message_sent", "failed"))
	assert.Equal(t, before+1, after)
}

func TestDispatcher_UnknownPartiesAreDropped(t *testing.T) {
	s := &captureSender{name: "s"}
	d := NewDispatcher(NewMemoryQueue(4), testProfiles, Options{}, s)

	d.Handle(context.Background(), SuperLike("alice", "ghost"))
	assert.Empty(t, s.intents())
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	s := &captureSender{name: "s"}
	d := NewDispatcher(NewMemoryQueue(1), testProfiles, Options{Buffer: 1}, s)

	before := testutil.ToFloat64(eventsTotal.WithLabelValues("super_like", "dropped"))
	done := make(chan struct{})
	go func() {
		// Not started: the intake holds one event, the rest are dropped.
		for i := 0; i < 5; i++ {
			d.Publish(SuperLike("alice", "bob"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
	after := testutil.ToFloat64(eventsTotal.WithLabelValues("super_like", "dropped"))
	assert.Equal(t, before+4, after)

	require.NoError(t, d.Close(context.Background()))
	d.Publish(SuperLike("alice", "bob"))
	assert.Equal(t, before+5, testutil.ToFloat64(eventsTotal.WithLabelValues("super_like", "dropped")))
}

func TestDispatcher_RedisQueue(t *testing.T) {
	q, _ := newRedisQueue(t)
	s := &captureSender{name: "s"}
	d := NewDispatcher(q, testProfiles, Options{Workers: 1}, s)
	d.Start()

	d.Publish(MatchCreated("m1", "alice", "bob"))
	require.Eventually(t, func() bool { return len(s.intents()) == 2 }, 3*time.Second, 10*time.Millisecond)

	closeWithin(t, d, 5*time.Second)
}

func TestDBProfiles(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "Luna")
	seedUser(t, db, "u2", "")

	got, err := DBProfiles{DB: db}.Profiles(context.Background(), "u1", "u2", "missing")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Luna", got["u1"].Name)
	assert.Equal(t, "u2", got["u2"].Name, "falls back to username")
	assert.Equal(t, "u1@example.test", got["u1"].Email)
}

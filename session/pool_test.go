package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAcquireReleaseRoundTrips(t *testing.T) {
	tokens := make(chan *Session, 1)
	tokens <- &Session{dialect: "sqlite"}
	p := &Pool{tokens: tokens}

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)

	select {
	case <-p.tokens:
		t.Fatal("pool should be empty while session is checked out")
	default:
	}

	p.Release(s)
	select {
	case <-p.tokens:
	default:
		t.Fatal("release should return the session to the pool")
	}
}

func TestPoolAcquireBlocksUntilContextCancelled(t *testing.T) {
	p := &Pool{tokens: make(chan *Session)}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Acquire(ctx)
	assert.Error(t, err)
}

func TestPoolConcurrentAcquireRespectsSize(t *testing.T) {
	tokens := make(chan *Session, 2)
	tokens <- &Session{dialect: "sqlite"}
	tokens <- &Session{dialect: "sqlite"}
	p := &Pool{tokens: tokens}

	ctx := context.Background()
	s1, err := p.Acquire(ctx)
	require.NoError(t, err)
	s2, err := p.Acquire(ctx)
	require.NoError(t, err)

	shortCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(shortCtx)
	assert.Error(t, err, "pool of size 2 should not hand out a third session")

	p.Release(s1)
	p.Release(s2)
}

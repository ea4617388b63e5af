package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

func newTestStore(t *testing.T) *ConversationMemory {
	t.Helper()
	return NewConversationMemory(5, time.Hour)
}

func TestMemoryGetEmpty(t *testing.T) {
	store := newTestStore(t)

	history, err := store.Get(context.Background(), "U1")
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestMemoryAppendKeepsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := store.Append(ctx, "U1", entity.Turn{
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
			AskedAt:  time.Now(),
		})
		require.NoError(t, err)
	}

	history, err := store.Get(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, turn := range history {
		require.Equal(t, fmt.Sprintf("q%d", i+1), turn.Question)
		require.Equal(t, fmt.Sprintf("a%d", i+1), turn.Answer)
	}
}

func TestMemoryBoundEvictsOldest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		err := store.Append(ctx, "U1", entity.Turn{
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
		})
		require.NoError(t, err)
	}

	history, err := store.Get(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, history, 5)
	// Turns 4..8 survive, oldest first.
	require.Equal(t, "q4", history[0].Question)
	require.Equal(t, "q8", history[4].Question)
}

func TestMemoryLengthIsMinOfNAndBound(t *testing.T) {
	ctx := context.Background()

	for n := 0; n <= 7; n++ {
		store := NewConversationMemory(5, time.Hour)
		for i := 0; i < n; i++ {
			require.NoError(t, store.Append(ctx, "U1", entity.Turn{Question: "q", Answer: "a"}))
		}

		history, err := store.Get(ctx, "U1")
		require.NoError(t, err)

		want := n
		if want > 5 {
			want = 5
		}
		require.Len(t, history, want, "after %d appends", n)
	}
}

func TestMemoryUsersAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "U1", entity.Turn{Question: "hello", Answer: "hi"}))

	other, err := store.Get(ctx, "U2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestMemoryClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "U1", entity.Turn{Question: "q", Answer: "a"}))
	require.NoError(t, store.Clear(ctx, "U1"))

	history, err := store.Get(ctx, "U1")
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "U1", entity.Turn{Question: "q1", Answer: "a1"}))

	history, err := store.Get(ctx, "U1")
	require.NoError(t, err)
	history[0].Question = "mutated"

	fresh, err := store.Get(ctx, "U1")
	require.NoError(t, err)
	require.Equal(t, "q1", fresh[0].Question)
}

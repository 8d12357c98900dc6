package directory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearcherCoalescesRapidUpdates(t *testing.T) {
	var mu sync.Mutex
	var applied []Query

	s := NewSearcher(func(q Query) {
		mu.Lock()
		applied = append(applied, q)
		mu.Unlock()
	}, 20*time.Millisecond)

	s.Update(Query{Search: "g"})
	s.Update(Query{Search: "go"})
	s.Update(Query{Search: "gop"})
	s.Update(Query{Search: "goph"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(applied) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, applied, 1, "superseded queries must be discarded")
	assert.Equal(t, "goph", applied[0].Search)
}

func TestSearcherStopDropsPendingRun(t *testing.T) {
	var mu sync.Mutex
	ran := false

	s := NewSearcher(func(Query) {
		mu.Lock()
		ran = true
		mu.Unlock()
	}, 10*time.Millisecond)

	s.Update(Query{Search: "abc"})
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, ran)
}

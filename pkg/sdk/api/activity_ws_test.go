package api

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The pong handler fires on the read goroutine while pingLoop checks the
// timestamp; both paths must be safe under the race detector.
func TestActivityStreamPongTimestampConcurrent(t *testing.T) {
	s := NewActivityStream(nil)
	s.touchPong()

	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < 1000; i++ {
			s.touchPong()
		}
	}()
	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < 1000; i++ {
			require.GreaterOrEqual(t, time.Minute, s.sincePong())
		}
	}()
	close(start)
	wg.Wait()

	require.Less(t, s.sincePong(), activityReadTimeout)
}

func TestActivityStreamHandleMessageFilters(t *testing.T) {
	var got []ActivityTrade
	s := NewActivityStream(func(trade ActivityTrade) { got = append(got, trade) })

	s.handleMessage([]byte(`{"topic":"activity","type":"trades","payload":{"asset":"123","side":"BUY","size":10,"price":0.5}}`))
	s.handleMessage([]byte(`{"topic":"activity","type":"orders_matched","payload":{"asset":"999"}}`))
	s.handleMessage([]byte(`{"topic":"comments","type":"trades","payload":{"asset":"999"}}`))
	s.handleMessage([]byte(`connected`))

	require.Len(t, got, 1)
	require.Equal(t, "123", got[0].Asset)
	require.Equal(t, "BUY", got[0].Side)
}

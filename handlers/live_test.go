package handlers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

// overlapWriter trips a flag when two WriteJSON calls run at once.
type overlapWriter struct {
	active     int32
	overlapped int32
	writes     int32
}

func (w *overlapWriter) WriteJSON(v interface{}) error {
	if atomic.AddInt32(&w.active, 1) > 1 {
		atomic.StoreInt32(&w.overlapped, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&w.writes, 1)
	atomic.AddInt32(&w.active, -1)
	return nil
}

func TestBroadcastSerializesWrites(t *testing.T) {
	const matchID = uint(990)
	writer := &overlapWriter{}
	viewer := &liveViewer{conn: writer}

	liveMu.Lock()
	liveViewers[matchID] = map[*liveViewer]bool{viewer: true}
	liveMu.Unlock()
	defer func() {
		liveMu.Lock()
		delete(liveViewers, matchID)
		liveMu.Unlock()
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			broadcastMatchUpdate(matchID, fiber.Map{"event": "score"})
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&writer.overlapped) != 0 {
		t.Error("concurrent broadcasts must not write to a connection at the same time")
	}
	if got := atomic.LoadInt32(&writer.writes); got != 8 {
		t.Errorf("expected 8 writes, got %d", got)
	}
}

package stream

import (
	"sync"

	"github.com/satindergrewal/p3player/internal/audio"
)

// listenerBuffer is about three seconds of 60ms blocks.
const listenerBuffer = 50

// Broadcaster fans out PCM blocks from the player to N listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
}

// Listener receives PCM blocks from the broadcaster.
type Listener struct {
	C    chan []int16 // buffered channel of 60ms PCM blocks
	done chan struct{}
}

// Done is closed when the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} { return l.done }

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new listener.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{
		C:    make(chan []int16, listenerBuffer),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	_, ok := b.listeners[l]
	delete(b.listeners, l)
	b.mu.Unlock()
	if ok {
		close(l.done)
	}
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Publish hands block to every listener. Slow listeners get blocks dropped
// rather than holding up playback. Listeners must not modify the block.
func (b *Broadcaster) Publish(block []int16) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for l := range b.listeners {
		select {
		case l.C <- block:
		default:
			// listener too slow, drop block to keep playback moving
		}
	}
}

// Sink returns an audio.Sink that publishes a copy of every block written
// to it. Closing the sink leaves the broadcaster and its listeners running,
// so one broadcaster can follow the player across tracks.
func (b *Broadcaster) Sink() audio.Sink {
	return broadcastSink{b}
}

type broadcastSink struct {
	b *Broadcaster
}

func (s broadcastSink) Write(block []int16) error {
	if s.b.ListenerCount() == 0 {
		return nil
	}
	s.b.Publish(append([]int16(nil), block...))
	return nil
}

func (broadcastSink) Close() error { return nil }

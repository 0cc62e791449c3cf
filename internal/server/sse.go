package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// EventsPath is where browsers subscribe to reload notifications.
const EventsPath = "/_devserve/events"

// Hub fans reload signals out to connected event streams.
type Hub struct {
	mu        sync.Mutex
	clients   map[chan struct{}]struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[chan struct{}]struct{}),
		done:    make(chan struct{}),
	}
}

// Subscribe registers a client. The channel has room for one pending reload
// so a signal sent while the client is writing is not lost. ok is false once
// the hub is closed.
func (h *Hub) Subscribe() (ch chan struct{}, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return nil, false
	default:
	}

	ch = make(chan struct{}, 1)
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *Hub) Unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// Broadcast never blocks; a client that already has a reload pending is skipped.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close ends every open stream. http.Server.Shutdown waits for active
// requests, so streams have to finish before it is called.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		close(h.done)
		h.mu.Unlock()
	})
}

// Serve streams Server-Sent Events until the client goes away or the hub closes.
func (h *Hub) Serve(c echo.Context) error {
	ch, ok := h.Subscribe()
	if !ok {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	defer h.Unsubscribe(ch)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, "data: connected\n\n"); err != nil {
		return nil
	}
	w.Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-h.done:
			return nil
		case <-ch:
			if _, err := fmt.Fprint(w, "data: reload\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

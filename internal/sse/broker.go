// Package sse streams document change notifications as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	EventDocumentCreated = "document.created"
	EventDocumentUpdated = "document.updated"
	EventDocumentDeleted = "document.deleted"
	EventOutlineUpdated  = "outline.updated"
)

// Event is one message broadcast to every client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type change struct {
	kind string
	path string
}

// Broker fans events out to connected clients.
//
// A single loop goroutine owns the client set and the per-document outline
// throttle; the public methods talk to it over channels.
type Broker struct {
	outlineMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. outline.updated is sent at most once per
// outlineThrottle for any one document.
func NewBroker(outlineThrottle time.Duration) *Broker {
	if outlineThrottle <= 0 {
		outlineThrottle = 2 * time.Second
	}

	b := &Broker{
		outlineMin:    outlineThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	lastOutline := make(map[string]time.Time)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// slow client, drop
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case c := <-b.changeCh:
			typ, ok := eventType(c.kind)
			if !ok {
				continue
			}
			data := map[string]string{"path": c.path}
			broadcast(Event{Type: typ, Data: data})

			if c.kind == "deleted" {
				delete(lastOutline, c.path)
				continue
			}
			now := time.Now()
			if now.Sub(lastOutline[c.path]) >= b.outlineMin {
				lastOutline[c.path] = now
				broadcast(Event{Type: EventOutlineUpdated, Data: data})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func eventType(kind string) (string, bool) {
	switch kind {
	case "created":
		return EventDocumentCreated, true
	case "updated":
		return EventDocumentUpdated, true
	case "deleted":
		return EventDocumentDeleted, true
	}
	return "", false
}

// Close stops the loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an arbitrary event to all clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// DocumentChanged broadcasts a document.* event for kind ("created",
// "updated" or "deleted") followed by a throttled outline.updated.
func (b *Broker) DocumentChanged(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- change{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

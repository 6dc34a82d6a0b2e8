package events

import (
	"net/http"
	"time"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one open event stream
type Client struct {
	remote      string
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a client for the given remote address
func NewClient(remote string) *Client {
	return &Client{
		remote:      remote,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Serve streams the hub's events to w until the request ends or the hub
// closes. initial is written first as a "session" event.
func Serve(w http.ResponseWriter, r *http.Request, hub *Hub, initial string) {
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(r.RemoteAddr)
	if !hub.Register(client) {
		w.WriteHeader(http.StatusGone)
		return
	}
	defer hub.Unregister(client)

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(formatMessage(EventSession, initial)); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			_ = rc.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			_ = rc.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// session is one websocket connection. Requests on a session are handled in
// order; each one runs its own generator.
type session struct {
	conn    *websocket.Conn
	ip      string
	release func()     // Returns the session's limit slot
	mu      sync.Mutex // Serialises writes
}

func newSession(conn *websocket.Conn, ip string, maxMessageSize int64, release func()) *session {
	if maxMessageSize > 0 {
		conn.SetReadLimit(maxMessageSize)
	}
	return &session{conn: conn, ip: ip, release: release}
}

// readRequest blocks for the next message. A message that is not a valid
// request returns a *requestError wrapping the decode error; the
// connection is still usable afterwards.
func (s *session) readRequest() (*Request, error) {
	_, message, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var req Request
	if err := json.Unmarshal(message, &req); err != nil {
		return nil, &requestError{err}
	}
	return &req, nil
}

func (s *session) writeResponse(resp *Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(resp)
}

// close ends the connection and frees its limit slot. It may be called
// more than once.
func (s *session) close() error {
	s.release()
	return s.conn.Close()
}

// requestError marks a message that could not be decoded
type requestError struct {
	err error
}

func (e *requestError) Error() string {
	return "invalid request: " + e.err.Error()
}

func (e *requestError) Unwrap() error {
	return e.err
}

package chromatica

import "sync"

// Subscriber receives events fanned out by a Connection's dispatcher. It is
// filtered by method name and, once any session id has been added, by
// session id as well: a subscriber with no methods registered matches
// nothing, and one with no session ids registered matches events from every
// session, mirroring EventSubscriber's empty-set-means-unfiltered rule.
type Subscriber struct {
	mu         sync.RWMutex
	methodSet  map[string]struct{}
	sessionSet map[string]struct{}

	ch chan *Message

	conn *Connection
	id   uint64
}

func newSubscriber(conn *Connection, id uint64, methods []string, sessionIDs []string, buf int) *Subscriber {
	s := &Subscriber{
		methodSet:  make(map[string]struct{}, len(methods)),
		sessionSet: make(map[string]struct{}, len(sessionIDs)),
		ch:         make(chan *Message, buf),
		conn:       conn,
		id:         id,
	}
	for _, m := range methods {
		s.methodSet[m] = struct{}{}
	}
	for _, sid := range sessionIDs {
		s.sessionSet[sid] = struct{}{}
	}
	return s
}

// Events returns the channel events are delivered on.
func (s *Subscriber) Events() <-chan *Message {
	return s.ch
}

// matches reports whether msg should be delivered to s.
func (s *Subscriber) matches(msg *Message) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.methodSet[msg.Method]; !ok {
		return false
	}
	if len(s.sessionSet) == 0 {
		return true
	}
	_, ok := s.sessionSet[msg.SessionID]
	return ok
}

// send delivers an event without blocking the dispatcher; it reports false
// (and is pruned by the caller) if the subscriber's channel is full or
// already closed.
func (s *Subscriber) send(msg *Message) bool {
	defer func() { recover() }()
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// AddSession adds sessionID to the set this subscriber accepts events from,
// used when an iframe target's session joins a manager it shares with its
// parent (NetworkManager.addSession, JSManager.addSession).
func (s *Subscriber) AddSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionSet[sessionID] = struct{}{}
}

// RemoveSession removes sessionID from the accepted set.
func (s *Subscriber) RemoveSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessionSet, sessionID)
}

// Drop unsubscribes s from its Connection and closes its event channel.
func (s *Subscriber) Drop() {
	s.conn.unsubscribe(s.id)
	close(s.ch)
}

package cart

import "sync"

type session struct {
	mu   sync.Mutex
	cart *Cart
	refs int
}

// Sessions keeps one cart per session key in memory.
type Sessions struct {
	mu    sync.Mutex
	carts map[string]*session
}

func NewSessions() *Sessions {
	return &Sessions{carts: make(map[string]*session)}
}

// With runs fn with exclusive access to the cart for key, creating an empty
// cart if none exists. Calls for different keys run concurrently. A cart left
// empty after fn returns is dropped.
func (s *Sessions) With(key string, fn func(*Cart) error) error {
	s.mu.Lock()
	sess, ok := s.carts[key]
	if !ok {
		sess = &session{cart: New()}
		s.carts[key] = sess
	}
	sess.refs++
	s.mu.Unlock()

	sess.mu.Lock()
	err := fn(sess.cart)
	sess.mu.Unlock()

	// With refs at zero no other caller can reach sess until s.mu is released.
	s.mu.Lock()
	sess.refs--
	if sess.refs == 0 && sess.cart.IsEmpty() {
		delete(s.carts, key)
	}
	s.mu.Unlock()
	return err
}

// Adopt moves the cart held under from into the cart under to, summing
// quantities per item. The cart under from is left empty and dropped.
func (s *Sessions) Adopt(from, to string) error {
	if from == to {
		return nil
	}
	var lines []Line
	_ = s.With(from, func(c *Cart) error {
		lines = c.Lines()
		c.Clear()
		return nil
	})
	if len(lines) == 0 {
		return nil
	}
	return s.With(to, func(c *Cart) error {
		c.Merge(lines)
		return nil
	})
}

// Len reports how many non-empty carts are held.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

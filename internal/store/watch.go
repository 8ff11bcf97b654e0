package store

import (
	"sync"

	"dindin/internal/logger"
	"dindin/internal/models"
)

// Snapshot is a full point-in-time copy of one user's transaction
// collection. Subscribers always replace their local state wholesale with
// the latest snapshot; there are no per-document deltas.
type Snapshot struct {
	Transactions []models.Transaction
}

// Subscription is one live watch on a user's transaction collection.
// Unsubscribe must be called exactly once per acquisition; it is safe to
// call more than once.
type Subscription struct {
	// C delivers snapshots in commit order. It is closed on Unsubscribe.
	C <-chan Snapshot

	ch     chan Snapshot
	hub    *hub
	userID string
	once   sync.Once
}

// Unsubscribe detaches the subscription and closes C.
func (sub *Subscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.hub.remove(sub.userID, sub)
	})
}

// Watch subscribes to a user's transaction collection. The current snapshot
// is loaded and delivered first, then a new snapshot follows every
// committed write. A consumer that falls behind is coalesced to the newest
// snapshot; full snapshots make skipping intermediate states safe.
func (s *Store) Watch(userID string) (*Subscription, error) {
	// Acquisition holds the publish lock: a commit cannot land between the
	// snapshot query and registration and go undelivered, and a broadcast
	// cannot be overwritten by the stale initial snapshot.
	s.hub.pubMu.Lock()
	defer s.hub.pubMu.Unlock()

	transactions, err := s.Transactions(userID)
	if err != nil {
		return nil, err
	}

	ch := make(chan Snapshot, 1)
	sub := &Subscription{C: ch, ch: ch, hub: s.hub, userID: userID}
	s.hub.add(userID, sub)
	sub.deliver(Snapshot{Transactions: transactions})
	return sub, nil
}

// publish loads the current snapshot and fans it out to every subscriber of
// the user. Serialized per store so snapshot delivery follows commit order.
func (s *Store) publish(userID string) {
	s.hub.pubMu.Lock()
	defer s.hub.pubMu.Unlock()

	if !s.hub.hasSubscribers(userID) {
		return
	}

	transactions, err := s.Transactions(userID)
	if err != nil {
		// Subscribers keep their previous snapshot; the next committed
		// write retries. Callers treat silence as potential staleness.
		logger.Get().Errorw("snapshot load failed", "user_id", userID, "error", err)
		return
	}

	s.hub.broadcast(userID, Snapshot{Transactions: transactions})
}

// deliver pushes a snapshot into the subscription channel, dropping the
// stale buffered snapshot if the consumer lags.
func (sub *Subscription) deliver(snap Snapshot) {
	for {
		select {
		case sub.ch <- snap:
			return
		default:
			select {
			case <-sub.ch:
			default:
			}
		}
	}
}

// hub tracks live subscriptions per user.
type hub struct {
	mu sync.RWMutex

	// pubMu serializes snapshot publication and subscription acquisition,
	// so every delivery follows commit order.
	pubMu sync.Mutex

	subs map[string]map[*Subscription]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *hub) add(userID string, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
}

// remove detaches and closes a subscription. Holding the write lock here
// excludes broadcast, so closing the channel cannot race a delivery.
func (h *hub) remove(userID string, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[userID]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.ch)
		}
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
}

func (h *hub) hasSubscribers(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID]) > 0
}

func (h *hub) broadcast(userID string, snap Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[userID] {
		sub.deliver(snap)
	}
}

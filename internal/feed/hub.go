package feed

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrEmptyOwner is returned when a subscription is requested before the
// caller identity has been resolved. Installing a filter from an unresolved
// identity would silently subscribe to nothing.
var ErrEmptyOwner = errors.New("subscription owner must be resolved before subscribing")

// subscriptionBuffer is the per-view notification buffer. A full buffer means
// re-queries are already pending for every dropped event, so dropping keeps
// the hub non-blocking without losing convergence.
const subscriptionBuffer = 16

// Notification signals that a mutation matching the subscription's owner
// occurred. Payload content is deliberately not exposed; subscribers re-query.
type Notification struct {
	EventType string
	OwnerID   string
	At        time.Time
}

// Hub fans change-feed notifications out to subscribed list views, keyed by
// owner.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a listener for one owner's events. The owner id must
// come from an already-resolved identity.
func (h *Hub) Subscribe(ownerID string) (*Subscription, error) {
	if ownerID == "" {
		return nil, ErrEmptyOwner
	}

	sub := &Subscription{
		hub:     h,
		ownerID: ownerID,
		ch:      make(chan Notification, subscriptionBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[*Subscription]struct{})
	}
	h.subs[ownerID][sub] = struct{}{}
	return sub, nil
}

// Publish delivers the notification to every subscription for its owner.
func (h *Hub) Publish(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[n.OwnerID] {
		select {
		case sub.ch <- n:
		default:
			recordDroppedNotification(n.OwnerID)
		}
	}
}

// SubscriberCount reports how many subscriptions an owner currently holds.
func (h *Hub) SubscriberCount(ownerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ownerID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	owners := h.subs[sub.ownerID]
	delete(owners, sub)
	if len(owners) == 0 {
		delete(h.subs, sub.ownerID)
	}
}

// Subscription is one view's handle on the change feed.
type Subscription struct {
	hub     *Hub
	ownerID string
	ch      chan Notification
	once    sync.Once
}

// Events returns the notification channel. It is closed when the
// subscription is released.
func (s *Subscription) Events() <-chan Notification {
	return s.ch
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

// NotifyHandler forwards consumed feed events to the hub, turning the Kafka
// stream into in-process notifications.
type NotifyHandler struct {
	hub *Hub
}

// NewNotifyHandler constructs a handler publishing to the given hub.
func NewNotifyHandler(hub *Hub) *NotifyHandler {
	return &NotifyHandler{hub: hub}
}

// Handle publishes one notification per consumed event.
func (h *NotifyHandler) Handle(_ context.Context, msg Message) error {
	h.hub.Publish(Notification{
		EventType: msg.EventType,
		OwnerID:   msg.OwnerID,
		At:        msg.Timestamp,
	})
	return nil
}

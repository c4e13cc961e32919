package okx

import (
	"fmt"
	"sync"
)

// SubscriptionKey uniquely identifies one subscription intent by channel and
// instrument. Insertion order is irrelevant.
type SubscriptionKey struct {
	Channel Channel
	InstID  string
}

// String renders the key for logs.
func (k SubscriptionKey) String() string {
	if k.InstID == "" {
		return string(k.Channel)
	}
	return fmt.Sprintf("%s:%s", k.Channel, k.InstID)
}

// Subscription describes one desired subscription: the channel plus its
// arguments.
type Subscription struct {
	Channel Channel
	Args    Args
}

// Key returns the registry key for the subscription.
func (s Subscription) Key() SubscriptionKey {
	return SubscriptionKey{Channel: s.Channel, InstID: s.Args.InstID}
}

// Registry is the durable record of the caller's desired subscriptions,
// independent of connection state. Entries are added and removed by caller
// calls and never cleared on disconnect: subscriptions are intents, not
// connection artifacts. The replay step reads a snapshot after each
// successful connect.
type Registry struct {
	mu      sync.Mutex
	entries map[SubscriptionKey]Subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[SubscriptionKey]Subscription)}
}

// Upsert records a subscription intent, replacing any previous entry for the
// same key.
func (r *Registry) Upsert(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sub.Key()] = sub
}

// Remove deletes the entry for key. Removing a key that was never subscribed
// is a no-op.
func (r *Registry) Remove(key SubscriptionKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Snapshot returns a point-in-time copy of all entries, safe to iterate while
// concurrent mutation occurs. Order is unspecified.
func (r *Registry) Snapshot() []Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Subscription, 0, len(r.entries))
	for _, sub := range r.entries {
		out = append(out, sub)
	}
	return out
}

// Len returns the number of active subscription intents.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Package notifier turns store writes into storageChange events for page
// contexts. Delivery is fire-and-forget: each subscriber has a bounded buffer
// and an event that does not fit is dropped. There is no acknowledgement and
// no ordering guarantee across keys.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/hlsync/internal/common"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/storage"
	"github.com/dmitrijs2005/hlsync/internal/logging"
)

// Policy selects which page contexts receive an event.
type Policy string

const (
	// PolicyActive delivers only to the page that last called Activate.
	// Background pages catch up on their next read or activation.
	PolicyActive Policy = "active"
	// PolicyAll delivers to every subscribed page.
	PolicyAll Policy = "all"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyActive, PolicyAll:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrorUnsupportedPolicy, s)
	}
}

// Event is one {key, newValue} notification.
type Event struct {
	Key   string
	Value any
}

type subscription struct {
	ch chan Event
}

type Notifier struct {
	policy Policy
	buffer int
	logger logging.Logger

	mu     sync.Mutex
	subs   map[string]*subscription
	active string
}

func New(policy Policy, buffer int, l logging.Logger) *Notifier {
	if buffer < 1 {
		buffer = 1
	}
	return &Notifier{
		policy: policy,
		buffer: buffer,
		logger: l.With("module", "notifier", "policy", string(policy)),
		subs:   make(map[string]*subscription),
	}
}

// Attach starts observing o and returns a function that stops it.
func (n *Notifier) Attach(o *storage.Observed) (detach func()) {
	return o.OnChanged(n.HandleChange)
}

// Subscribe registers pageID and returns its event channel plus a cancel
// function that closes it. A second subscription for the same page replaces
// (and closes) the first.
func (n *Notifier) Subscribe(pageID string) (<-chan Event, func()) {
	sub := &subscription{ch: make(chan Event, n.buffer)}

	n.mu.Lock()
	if old, ok := n.subs[pageID]; ok {
		close(old.ch)
	}
	n.subs[pageID] = sub
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if cur, ok := n.subs[pageID]; ok && cur == sub {
			delete(n.subs, pageID)
			close(sub.ch)
			if n.active == pageID {
				n.active = ""
			}
		}
	}
	return sub.ch, cancel
}

// Activate marks pageID as the focused page context.
func (n *Notifier) Activate(pageID string) {
	n.mu.Lock()
	n.active = pageID
	n.mu.Unlock()
}

func (n *Notifier) Active() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// HandleChange is the storage.Listener: it decodes the written value and
// delivers one event per the policy. It never blocks.
func (n *Notifier) HandleChange(ctx context.Context, change storage.Change) {
	var value any
	if err := json.Unmarshal(change.Value, &value); err != nil {
		n.logger.Warn(ctx, "undecodable stored value, sending raw text", "key", change.Key, "error", err)
		value = string(change.Value)
	}
	ev := Event{Key: change.Key, Value: value}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.logger.Debug(ctx, "storage key changed", "key", change.Key, "subscribers", len(n.subs), "active", n.active)

	switch n.policy {
	case PolicyAll:
		for pageID, sub := range n.subs {
			n.deliverLocked(ctx, pageID, sub, ev)
		}
	default:
		if sub, ok := n.subs[n.active]; ok {
			n.deliverLocked(ctx, n.active, sub, ev)
		}
	}
}

func (n *Notifier) deliverLocked(ctx context.Context, pageID string, sub *subscription, ev Event) {
	select {
	case sub.ch <- ev:
	default:
		n.logger.Warn(ctx, "subscriber buffer full, event dropped", "page_id", pageID, "key", ev.Key)
	}
}

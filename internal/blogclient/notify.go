package blogclient

import (
	"sync"
	"time"
)

type NotificationType string

const (
	NotificationCommon NotificationType = "common"
	NotificationError  NotificationType = "error"

	// DefaultNotificationTimeout is the auto-clear delay. A non-positive
	// duration passed to Notify suppresses auto-clear entirely.
	DefaultNotificationTimeout = 5 * time.Second
)

type Notification struct {
	Type    NotificationType
	Content string
}

// Notifier holds the transient UI notification. It owns at most one pending
// auto-clear timer: posting a notification cancels the previous timer before
// scheduling a new one, so a superseded notification's timer can never clear
// its successor. The generation counter guards the window where a stopped
// timer has already fired but not yet run.
type Notifier struct {
	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	current Notification
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Notify(t NotificationType, content string, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}

	n.gen++
	n.current = Notification{Type: t, Content: content}

	if duration > 0 {
		gen := n.gen
		n.timer = time.AfterFunc(duration, func() {
			n.clear(gen)
		})
	}
}

// clear drops the content of the notification posted at generation gen. The
// type is kept, matching the reducer-style state shape.
func (n *Notifier) clear(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.gen != gen {
		return
	}

	n.current.Content = ""
	n.timer = nil
}

func (n *Notifier) Current() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.current
}

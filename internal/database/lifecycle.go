package database

import (
	"log/slog"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/description"
)

// ConnectionObserver receives connection state transitions of the document store.
type ConnectionObserver interface {
	Connected()
	Error(err error)
	Disconnected()
}

// LifecycleLogger logs each connection transition exactly once.
type LifecycleLogger struct {
	log *slog.Logger
}

// NewLifecycleLogger creates a LifecycleLogger writing to log.
func NewLifecycleLogger(log *slog.Logger) *LifecycleLogger {
	if log == nil {
		log = slog.Default()
	}
	return &LifecycleLogger{log: log}
}

// Connected logs at info level.
func (l *LifecycleLogger) Connected() {
	l.log.Info("mongodb connected successfully")
}

// Error logs at error level. Connection errors are not fatal.
func (l *LifecycleLogger) Error(err error) {
	l.log.Error("mongodb connection error", "error", err)
}

// Disconnected logs at warn level.
func (l *LifecycleLogger) Disconnected() {
	l.log.Warn("mongodb disconnected")
}

// ConnectionTracker turns driver monitoring callbacks into deduplicated
// connected/error/disconnected transitions. The driver calls the monitor
// from its own goroutines.
type ConnectionTracker struct {
	mu        sync.Mutex
	observer  ConnectionObserver
	connected bool
	closed    bool
	lastErr   string
}

// NewConnectionTracker creates a tracker reporting to observer.
func NewConnectionTracker(observer ConnectionObserver) *ConnectionTracker {
	return &ConnectionTracker{observer: observer}
}

// Connected reports whether at least one server is currently available.
func (t *ConnectionTracker) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// SetAvailable records server availability and emits connected or
// disconnected on a state change.
func (t *ConnectionTracker) SetAvailable(available bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || available == t.connected {
		return
	}
	t.connected = available
	if available {
		t.lastErr = ""
		t.observer.Connected()
		return
	}
	t.observer.Disconnected()
}

// Fail emits an error event. An error that repeats or wraps the one already
// reported since the connection last recovered is skipped: the driver
// re-reports heartbeat failures and server selection errors embed them.
func (t *ConnectionTracker) Fail(err error) {
	if err == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	msg := err.Error()
	if t.closed || sameFailure(t.lastErr, msg) {
		return
	}
	t.lastErr = msg
	t.observer.Error(err)
}

// FailOnce emits an error event only if no error has been reported since the
// connection last recovered.
func (t *ConnectionTracker) FailOnce(err error) {
	if err == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.lastErr != "" {
		return
	}
	t.lastErr = err.Error()
	t.observer.Error(err)
}

func sameFailure(reported, msg string) bool {
	if reported == "" {
		return false
	}
	return strings.Contains(msg, reported) || strings.Contains(reported, msg)
}

// Close emits disconnected if the connection was up and ignores later callbacks.
func (t *ConnectionTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	if t.connected {
		t.connected = false
		t.observer.Disconnected()
	}
}

// ServerMonitor returns a driver monitor feeding this tracker.
func (t *ConnectionTracker) ServerMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		TopologyDescriptionChanged: func(e *event.TopologyDescriptionChangedEvent) {
			t.SetAvailable(hasAvailableServer(e.NewDescription))
		},
		ServerDescriptionChanged: func(e *event.ServerDescriptionChangedEvent) {
			if e.NewDescription.LastError != nil {
				t.Fail(e.NewDescription.LastError)
			}
		},
	}
}

func hasAvailableServer(topology description.Topology) bool {
	for _, server := range topology.Servers {
		if server.Kind != description.Unknown {
			return true
		}
	}
	return false
}

// MultiObserver fans each transition out to every observer in order.
type MultiObserver []ConnectionObserver

func (m MultiObserver) Connected() {
	for _, o := range m {
		o.Connected()
	}
}

func (m MultiObserver) Error(err error) {
	for _, o := range m {
		o.Error(err)
	}
}

func (m MultiObserver) Disconnected() {
	for _, o := range m {
		o.Disconnected()
	}
}

// ConnectSignal notifies C whenever the connection becomes available.
// Notifications coalesce while the previous one is unread.
type ConnectSignal struct {
	C chan struct{}
}

// NewConnectSignal creates a ConnectSignal with a one-slot channel.
func NewConnectSignal() *ConnectSignal {
	return &ConnectSignal{C: make(chan struct{}, 1)}
}

func (s *ConnectSignal) Connected() {
	select {
	case s.C <- struct{}{}:
	default:
	}
}

func (s *ConnectSignal) Error(error) {}

func (s *ConnectSignal) Disconnected() {}

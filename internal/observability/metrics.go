package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the intake pipeline,
// the lifecycle engine and the reminder sweeps.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	messageCount  map[string]int64
	orderCount    map[string]int64
	commandCount  map[string]int64
	reminderCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		messageCount:  make(map[string]int64),
		orderCount:    make(map[string]int64),
		commandCount:  make(map[string]int64),
		reminderCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordMessage counts a classified inbound message.
func (m *Metrics) RecordMessage(isServiceRequest bool, priority string) {
	if m == nil {
		return
	}
	key := strconv.FormatBool(isServiceRequest) + "|" + priority
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messageCount[key]++
}

// RecordOrderCreated counts a created service order by priority.
func (m *Metrics) RecordOrderCreated(priority string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderCount[priority]++
}

// RecordCommand counts an operator command by action and outcome.
func (m *Metrics) RecordCommand(action, outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandCount[action+"|"+outcome]++
}

// RecordReminder counts a dispatched reminder by tier.
func (m *Metrics) RecordReminder(tier string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminderCount[tier]++
}

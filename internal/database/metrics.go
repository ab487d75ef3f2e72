package database

import (
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Metrics collects lightweight query statistics for the manager
type Metrics struct {
	db     *sql.DB
	logger *zap.Logger

	totalQueries  int64
	failedQueries int64
	slowQueries   int64

	mu            sync.RWMutex
	totalDuration time.Duration
	byType        map[string]int64
	startedAt     time.Time

	stop chan struct{}
	once sync.Once
}

// MetricsSnapshot is a point-in-time view of collected metrics
type MetricsSnapshot struct {
	TotalQueries    int64            `json:"total_queries"`
	FailedQueries   int64            `json:"failed_queries"`
	SlowQueries     int64            `json:"slow_queries"`
	AverageDuration time.Duration    `json:"average_duration"`
	QueriesByType   map[string]int64 `json:"queries_by_type"`
	OpenConnections int              `json:"open_connections"`
	InUse           int              `json:"in_use"`
	Idle            int              `json:"idle"`
	Uptime          time.Duration    `json:"uptime"`
}

// NewMetrics creates a metrics collector for the given connection
func NewMetrics(db *sql.DB, logger *zap.Logger) *Metrics {
	m := &Metrics{
		db:        db,
		logger:    logger,
		byType:    make(map[string]int64),
		startedAt: time.Now(),
		stop:      make(chan struct{}),
	}

	go m.reportLoop()

	return m
}

// RecordQuery records a single query execution
func (m *Metrics) RecordQuery(queryType string, duration time.Duration, err error) {
	atomic.AddInt64(&m.totalQueries, 1)
	if err != nil {
		atomic.AddInt64(&m.failedQueries, 1)
	}
	if duration > 100*time.Millisecond {
		atomic.AddInt64(&m.slowQueries, 1)
	}

	m.mu.Lock()
	m.totalDuration += duration
	m.byType[queryType]++
	m.mu.Unlock()
}

// Snapshot returns the current metrics state
func (m *Metrics) Snapshot() *MetricsSnapshot {
	total := atomic.LoadInt64(&m.totalQueries)

	m.mu.RLock()
	var avg time.Duration
	if total > 0 {
		avg = m.totalDuration / time.Duration(total)
	}
	byType := make(map[string]int64, len(m.byType))
	for k, v := range m.byType {
		byType[k] = v
	}
	m.mu.RUnlock()

	stats := m.db.Stats()

	return &MetricsSnapshot{
		TotalQueries:    total,
		FailedQueries:   atomic.LoadInt64(&m.failedQueries),
		SlowQueries:     atomic.LoadInt64(&m.slowQueries),
		AverageDuration: avg,
		QueriesByType:   byType,
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		Uptime:          time.Since(m.startedAt),
	}
}

// reportLoop periodically logs a metrics summary
func (m *Metrics) reportLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snap := m.Snapshot()
			m.logger.Debug("Database metrics",
				zap.Int64("total_queries", snap.TotalQueries),
				zap.Int64("failed_queries", snap.FailedQueries),
				zap.Int64("slow_queries", snap.SlowQueries),
				zap.Duration("avg_duration", snap.AverageDuration),
				zap.Int("open_connections", snap.OpenConnections),
			)
		case <-m.stop:
			return
		}
	}
}

// Stop terminates the background reporting loop
func (m *Metrics) Stop() {
	m.once.Do(func() { close(m.stop) })
}

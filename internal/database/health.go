package database

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthStatus represents the health of the database connection
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	Status       string        `json:"status"` // healthy, degraded, unhealthy
	Latency      time.Duration `json:"latency"`
	OpenConns    int           `json:"open_conns"`
	InUseConns   int           `json:"in_use_conns"`
	WaitCount    int64         `json:"wait_count"`
	LastChecked  time.Time     `json:"last_checked"`
	ErrorMessage string        `json:"error,omitempty"`
}

// HealthChecker periodically pings the database and caches the result
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger

	mu     sync.RWMutex
	last   *HealthStatus
	stop   chan struct{}
	once   sync.Once
	period time.Duration
}

// NewHealthChecker creates a health checker with a background loop
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		manager: manager,
		logger:  logger,
		stop:    make(chan struct{}),
		period:  30 * time.Second,
	}

	go hc.loop()

	return hc
}

// Check performs an immediate health check
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastChecked: start}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := hc.manager.DB().PingContext(pingCtx)
	status.Latency = time.Since(start)

	stats := hc.manager.Stats()
	status.OpenConns = stats.OpenConnections
	status.InUseConns = stats.InUse
	status.WaitCount = stats.WaitCount

	switch {
	case err != nil:
		status.Healthy = false
		status.Status = "unhealthy"
		status.ErrorMessage = err.Error()
	case status.Latency > time.Second:
		status.Healthy = true
		status.Status = "degraded"
	default:
		status.Healthy = true
		status.Status = "healthy"
	}

	hc.mu.Lock()
	hc.last = status
	hc.mu.Unlock()

	return status
}

// Last returns the most recent cached health status, which may be nil
// before the first check completes.
func (hc *HealthChecker) Last() *HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.last
}

// loop runs periodic background health checks
func (hc *HealthChecker) loop() {
	ticker := time.NewTicker(hc.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status := hc.Check(context.Background())
			if !status.Healthy {
				hc.logger.Error("Database health check failed",
					zap.String("error", status.ErrorMessage),
					zap.Duration("latency", status.Latency),
				)
			}
		case <-hc.stop:
			return
		}
	}
}

// Stop terminates the background health check loop
func (hc *HealthChecker) Stop() {
	hc.once.Do(func() { close(hc.stop) })
}

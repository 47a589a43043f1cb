package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics collects request counters for the metrics endpoint. One instance
// is shared by the middleware and the handlers.
type Metrics struct {
	mu             sync.RWMutex
	requestCount   int64
	errorCount     int64
	activeRequests int64
	totalDuration  time.Duration
	statusCodes    map[string]int64
	endpoints      map[string]int64
	startTime      time.Time
	lastRequest    time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.activeRequests++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		endpoint := c.Request.Method + " " + c.FullPath()

		m.mu.Lock()
		m.requestCount++
		m.activeRequests--
		m.totalDuration += duration
		m.lastRequest = time.Now()

		if statusCode >= 400 {
			m.errorCount++
		}
		m.statusCodes[http.StatusText(statusCode)]++
		m.endpoints[endpoint]++
		m.mu.Unlock()
	}
}

type Snapshot struct {
	RequestCount   int64            `json:"request_count"`
	AvgDurationMS  float64          `json:"avg_request_duration_ms"`
	ActiveRequests int64            `json:"active_requests"`
	ErrorCount     int64            `json:"error_count"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	Endpoints      map[string]int64 `json:"endpoint_calls"`
	StartTime      time.Time        `json:"start_time"`
	LastRequest    time.Time        `json:"last_request"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := Snapshot{
		RequestCount:   m.requestCount,
		ActiveRequests: m.activeRequests,
		ErrorCount:     m.errorCount,
		StatusCodes:    make(map[string]int64, len(m.statusCodes)),
		Endpoints:      make(map[string]int64, len(m.endpoints)),
		StartTime:      m.startTime,
		LastRequest:    m.lastRequest,
		UptimeSeconds:  time.Since(m.startTime).Seconds(),
	}

	if m.requestCount > 0 {
		avg := m.totalDuration / time.Duration(m.requestCount)
		snapshot.AvgDurationMS = float64(avg) / float64(time.Millisecond)
	}

	for k, v := range m.statusCodes {
		snapshot.StatusCodes[k] = v
	}
	for k, v := range m.endpoints {
		snapshot.Endpoints[k] = v
	}

	return snapshot
}

type SystemMetrics struct {
	Uptime         string      `json:"uptime"`
	MemoryUsage    MemoryStats `json:"memory"`
	GoroutineCount int         `json:"goroutine_count"`
	CPUCount       int         `json:"cpu_count"`
	GoVersion      string      `json:"go_version"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc_mb"`
	TotalAlloc   uint64 `json:"total_alloc_mb"`
	Sys          uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
	NextGC       uint64 `json:"next_gc_mb"`
	LastGC       string `json:"last_gc"`
	GCPauseTotal string `json:"gc_pause_total"`
}

func (m *Metrics) SystemSnapshot() SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SystemMetrics{
		Uptime: time.Since(m.startTime).String(),
		MemoryUsage: MemoryStats{
			Alloc:        bToMb(mem.Alloc),
			TotalAlloc:   bToMb(mem.TotalAlloc),
			Sys:          bToMb(mem.Sys),
			NumGC:        mem.NumGC,
			NextGC:       bToMb(mem.NextGC),
			LastGC:       time.Unix(0, int64(mem.LastGC)).Format(time.RFC3339),
			GCPauseTotal: time.Duration(mem.PauseTotalNs).String(),
		},
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// StatsSource lets other subsystems publish their counters on the metrics
// endpoint.
type StatsSource func() map[string]interface{}

func (m *Metrics) Handler(sources map[string]StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"application": m.Snapshot(),
			"system":      m.SystemSnapshot(),
			"timestamp":   time.Now(),
		}

		for name, source := range sources {
			if stats := source(); stats != nil {
				response[name] = stats
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

// LivenessHandler answers as long as the process can serve requests at all.
func (m *Metrics) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now(),
			"uptime":    time.Since(m.startTime).String(),
		})
	}
}

type HealthCheckFunc func(ctx context.Context) error

type HealthCheck struct {
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run"`
}

// HealthChecker runs registered dependency probes on every health request.
type HealthChecker struct {
	mu      sync.RWMutex
	checks  map[string]HealthCheckFunc
	timeout time.Duration
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks:  make(map[string]HealthCheckFunc),
		timeout: 5 * time.Second,
	}
}

func (hc *HealthChecker) Register(name string, check HealthCheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

func (hc *HealthChecker) Run(ctx context.Context) map[string]HealthCheck {
	hc.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(hc.checks))
	for name, check := range hc.checks {
		checks[name] = check
	}
	hc.mu.RUnlock()

	results := make(map[string]HealthCheck, len(checks))
	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, hc.timeout)
		status, message := "healthy", ""
		if err := check(checkCtx); err != nil {
			status = "unhealthy"
			message = err.Error()
		}
		cancel()

		results[name] = HealthCheck{
			Name:    name,
			Status:  status,
			Message: message,
			LastRun: time.Now(),
		}
	}

	return results
}

func (hc *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := hc.Run(c.Request.Context())

		overall := "healthy"
		for _, check := range checks {
			if check.Status != "healthy" {
				overall = "unhealthy"
				break
			}
		}

		status := http.StatusOK
		if overall != "healthy" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":    overall,
			"checks":    checks,
			"timestamp": time.Now(),
		})
	}
}

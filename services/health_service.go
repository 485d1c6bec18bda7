package services

import (
	"context"
	"runtime"
	"strings"
	"time"

	"gymdesk_go/config"
	"gymdesk_go/database"
)

const (
	overallStatusOK       = "ok"
	overallStatusDegraded = "degraded"
	overallStatusCritical = "critical"

	dependencyStatusUp       = "up"
	dependencyStatusDown     = "down"
	dependencyStatusDisabled = "disabled"

	healthProbeTimeout = 1500 * time.Millisecond
)

// HealthService aggregates database, cache and background-worker health for
// the detailed health endpoint.
type HealthService struct {
	serviceName string
	version     string
	startTime   time.Time
}

// HealthReport is the JSON response of the detailed health endpoint
type HealthReport struct {
	Status        string             `json:"status"`
	Service       string             `json:"service"`
	Version       string             `json:"version"`
	Environment   string             `json:"environment"`
	Time          time.Time          `json:"time"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Workers       WorkerReport       `json:"workers"`
	Runtime       RuntimeInfo        `json:"runtime"`
}

// DependencyStatus captures a single probed dependency
type DependencyStatus struct {
	Name      string                 `json:"name"`
	Status    string                 `json:"status"`
	LatencyMs int64                  `json:"latency_ms"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// WorkerReport surfaces the state of the background workers so a stalled
// expiry sweep is visible without reading logs
type WorkerReport struct {
	SubscriptionSweep  SweepStatus `json:"subscription_sweep"`
	NotificationWorker string      `json:"notification_worker"`
}

// RuntimeInfo exposes basic process information
type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
}

func NewHealthService(serviceName, version string) *HealthService {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "GymDesk API"
	}
	if strings.TrimSpace(version) == "" {
		version = "1.0.0"
	}
	return &HealthService{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
	}
}

// GetHealthReport probes MySQL and Redis and collects worker state. MySQL down
// is critical; Redis down only degrades when notifications are routed through it.
func (s *HealthService) GetHealthReport() HealthReport {
	ctx, cancel := context.WithTimeout(context.Background(), healthProbeTimeout)
	defer cancel()

	report := HealthReport{
		Status:        overallStatusOK,
		Service:       s.serviceName,
		Version:       s.version,
		Environment:   currentEnvironment(),
		Time:          time.Now().UTC(),
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	}

	dbDep, dbStatus := s.checkDatabase(ctx)
	report.Status = worseStatus(report.Status, dbStatus)

	redisDep, redisStatus := s.checkRedis(ctx)
	report.Status = worseStatus(report.Status, redisStatus)

	report.Dependencies = []DependencyStatus{dbDep, redisDep}
	report.Workers = collectWorkers()
	report.Runtime = RuntimeInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
	}

	return report
}

// HTTPStatusForOverall maps a health status to an HTTP status code
func (s *HealthService) HTTPStatusForOverall(status string) int {
	if status == overallStatusCritical {
		return 503
	}
	return 200
}

func (s *HealthService) checkDatabase(ctx context.Context) (DependencyStatus, string) {
	dep := DependencyStatus{Name: "mysql"}

	if database.DB == nil {
		dep.Status = dependencyStatusDown
		dep.Error = "database connection not initialised"
		return dep, overallStatusCritical
	}

	sqlDB, err := database.DB.DB()
	if err != nil {
		dep.Status = dependencyStatusDown
		dep.Error = err.Error()
		return dep, overallStatusCritical
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	start := time.Now()
	err = sqlDB.PingContext(pingCtx)
	cancel()
	dep.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		dep.Status = dependencyStatusDown
		dep.Error = err.Error()
		return dep, overallStatusCritical
	}

	dep.Status = dependencyStatusUp
	stats := sqlDB.Stats()
	dep.Details = map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
	}
	return dep, overallStatusOK
}

func (s *HealthService) checkRedis(ctx context.Context) (DependencyStatus, string) {
	dep := DependencyStatus{Name: "redis"}
	useRedis := config.AppConfig != nil && config.AppConfig.UseRedisNotifications

	client := database.GetRedisClient()
	if client == nil {
		if useRedis {
			dep.Status = dependencyStatusDown
			dep.Error = "redis client not initialised"
			return dep, overallStatusDegraded
		}
		dep.Status = dependencyStatusDisabled
		return dep, overallStatusOK
	}

	pingCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	start := time.Now()
	err := client.Ping(pingCtx).Err()
	cancel()
	dep.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		dep.Status = dependencyStatusDown
		dep.Error = err.Error()
		if useRedis {
			return dep, overallStatusDegraded
		}
		return dep, overallStatusOK
	}

	dep.Status = dependencyStatusUp
	dep.Details = map[string]interface{}{"address": client.Options().Addr}
	return dep, overallStatusOK
}

func collectWorkers() WorkerReport {
	mode := "direct"
	if config.AppConfig != nil && config.AppConfig.UseRedisNotifications {
		mode = "redis"
	}
	return WorkerReport{
		SubscriptionSweep:  LastSweep(),
		NotificationWorker: mode,
	}
}

func currentEnvironment() string {
	if config.AppConfig == nil {
		return "unknown"
	}
	env := strings.TrimSpace(config.AppConfig.AppEnv)
	if env == "" {
		return "unknown"
	}
	return env
}

func worseStatus(current, candidate string) string {
	order := map[string]int{
		overallStatusOK:       0,
		overallStatusDegraded: 1,
		overallStatusCritical: 2,
	}
	if order[candidate] > order[current] {
		return candidate
	}
	return current
}

package stats

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kalshi_trader"

var (
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "decisions_total", Help: "Recorded strategy decisions"},
		[]string{"strategy", "action"},
	)
	TicksDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "ticks_dropped_total", Help: "Ticks dropped because an evaluation was still running"},
		[]string{"job"},
	)
	JobPanicsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "job_panics_total", Help: "Panics recovered from scheduled jobs"},
		[]string{"job"},
	)
)

type endpoint struct {
	calls   int64
	errors  int64
	totalMs float64
}

// ApiStats 按接口统计调用次数、失败次数和耗时，同时写入 Prometheus
type ApiStats struct {
	mu        sync.Mutex
	data      map[string]*endpoint
	startedAt time.Time
	now       func() time.Time

	calls    *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

type EndpointStat struct {
	Endpoint string  `json:"endpoint"`
	Calls    int64   `json:"calls"`
	Errors   int64   `json:"errors"`
	AvgMs    float64 `json:"avg_ms"`
	TotalMs  float64 `json:"total_ms"`
}

type Totals struct {
	TotalCalls     int64   `json:"total_calls"`
	TotalErrors    int64   `json:"total_errors"`
	CallsPerMinute float64 `json:"calls_per_minute"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
}

func NewApiStats() *ApiStats {
	return newApiStats(time.Now)
}

func newApiStats(now func() time.Time) *ApiStats {
	return &ApiStats{
		data:      make(map[string]*endpoint),
		startedAt: now(),
		now:       now,
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "venue_calls_total", Help: "Venue API calls"},
			[]string{"endpoint"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "venue_errors_total", Help: "Failed venue API calls"},
			[]string{"endpoint"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "venue_call_duration_seconds",
				Help:      "Venue API call latency",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
	}
}

// Register 注册接口统计和引擎指标
func (s *ApiStats) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{s.calls, s.failures, s.latency, DecisionsTotal, TicksDroppedTotal, JobPanicsTotal} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *ApiStats) Record(label string, elapsed time.Duration, failed bool) {
	ms := float64(elapsed) / float64(time.Millisecond)

	s.mu.Lock()
	e, ok := s.data[label]
	if !ok {
		e = &endpoint{}
		s.data[label] = e
	}
	e.calls++
	e.totalMs += ms
	if failed {
		e.errors++
	}
	s.mu.Unlock()

	s.calls.WithLabelValues(label).Inc()
	s.latency.WithLabelValues(label).Observe(elapsed.Seconds())
	if failed {
		s.failures.WithLabelValues(label).Inc()
	}
}

// Summary 按接口名排序
func (s *ApiStats) Summary() []EndpointStat {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]EndpointStat, 0, len(s.data))
	for label, e := range s.data {
		row := EndpointStat{
			Endpoint: label,
			Calls:    e.calls,
			Errors:   e.errors,
			TotalMs:  round1(e.totalMs),
		}
		if e.calls > 0 {
			row.AvgMs = round1(e.totalMs / float64(e.calls))
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Endpoint < rows[j].Endpoint })
	return rows
}

func (s *ApiStats) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Totals
	for _, e := range s.data {
		t.TotalCalls += e.calls
		t.TotalErrors += e.errors
	}
	uptime := s.now().Sub(s.startedAt).Seconds()
	if uptime > 0 {
		t.CallsPerMinute = math.Round(float64(t.TotalCalls)/(uptime/60)*100) / 100
	}
	t.UptimeSeconds = int64(uptime)
	return t
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

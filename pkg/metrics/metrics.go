package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 业务与 HTTP 指标
// 使用独立 Registry，测试中可重复创建
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.HistogramVec
	Enrollments  *prometheus.CounterVec // result: requested | conflict | approved | rejected
	Submissions  *prometheus.CounterVec // result: accepted | conflict | not_enrolled | window_closed
	Grades       *prometheus.CounterVec // result: recorded | out_of_range
}

// New 创建并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dlr",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dlr",
			Name:      "enrollment_events_total",
			Help:      "Enrollment lifecycle events by result.",
		}, []string{"result"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dlr",
			Name:      "submission_attempts_total",
			Help:      "Submission attempts by result.",
		}, []string{"result"}),
		Grades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dlr",
			Name:      "grading_events_total",
			Help:      "Grading requests by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.HTTPRequests, m.Enrollments, m.Submissions, m.Grades)
	return m
}

// Handler 返回 /metrics 暴露端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IncEnrollment 计数选课事件；m 为 nil 时忽略
func (m *Metrics) IncEnrollment(result string) {
	if m == nil {
		return
	}
	m.Enrollments.WithLabelValues(result).Inc()
}

// IncSubmission 计数提交尝试
func (m *Metrics) IncSubmission(result string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(result).Inc()
}

// IncGrade 计数评分请求
func (m *Metrics) IncGrade(result string) {
	if m == nil {
		return
	}
	m.Grades.WithLabelValues(result).Inc()
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration HTTP 请求耗时，按路由模板与状态码区分
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "csareg",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP 请求处理耗时",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// StructureWrites 报名表结构写入次数（create | replace），按结果区分
	StructureWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csareg",
		Name:      "structure_writes_total",
		Help:      "报名表结构创建/替换次数",
	}, []string{"op", "result"})

	// StructureNodes 单次结构写入的节点数
	StructureNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "csareg",
		Name:      "structure_nodes",
		Help:      "单次结构写入持久化的节点数",
		Buckets:   []float64{1, 5, 10, 20, 50, 100, 200},
	})

	// AuditSubmissions CSP 审核申请提交次数，按提交时闸门状态区分
	AuditSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csareg",
		Name:      "csp_audit_submissions_total",
		Help:      "CSP 免费审核申请提交次数",
	}, []string{"gate"})

	// AuditReviews CSP 审核处理次数（permit | reject | conflict）
	AuditReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csareg",
		Name:      "csp_audit_reviews_total",
		Help:      "CSP 免费审核处理次数",
	}, []string{"outcome"})
)

// Handler 返回 Prometheus 抓取端点
func Handler() http.Handler {
	return promhttp.Handler()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API 指标
var (
	// APIRequestsTotal API 请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modflow_api_requests_total",
			Help: "API 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration API 请求延迟（秒）
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modflow_api_request_duration_seconds",
			Help:    "API 请求延迟分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// 审批指标
var (
	// ModerationActionsTotal 审批动作总数
	ModerationActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modflow_moderation_actions_total",
			Help: "审批动作总数",
		},
		[]string{"action", "outcome"},
	)

	// RequestsPendingGauge 处于待审批状态的请求数量
	RequestsPendingGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "modflow_moderation_requests_pending",
			Help: "待审批的请求数量",
		},
	)

	// BulkOperationsTotal 批量操作结果统计
	BulkOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modflow_moderation_bulk_operations_total",
			Help: "批量审批操作按行统计",
		},
		[]string{"operation", "outcome"},
	)

	// CollectionsArchivedTotal 归档的集合总数
	CollectionsArchivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "modflow_moderation_collections_archived_total",
			Help: "达到归档状态的审批集合总数",
		},
	)

	// PublishTotal 版本发布结果统计
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modflow_version_publish_total",
			Help: "审批通过后的版本发布结果",
		},
		[]string{"status"},
	)

	// NotificationsTotal 通知投递统计
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modflow_notifications_total",
			Help: "审批通知投递统计",
		},
		[]string{"channel", "status"},
	)
)

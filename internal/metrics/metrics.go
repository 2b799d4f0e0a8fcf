package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"subvention/internal/models"
)

// Operation outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeConflict   = "conflict"
	OutcomeNotFound   = "not_found"
	OutcomeStorage    = "storage_error"
)

var (
	liveExclusionsDesc = prometheus.NewDesc(
		"subvention_exclusion_keyword_announcements",
		"Announcements currently excluded by each active exclusion keyword",
		[]string{"keyword"},
		nil,
	)

	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subvention_exclusion_operations_total",
			Help: "Exclusion keyword apply and revoke calls by outcome",
		},
		[]string{"operation", "outcome"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subvention_exclusion_operation_duration_seconds",
			Help:    "Duration of exclusion keyword apply and revoke calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	reclassifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subvention_reclassified_announcements_total",
			Help: "Announcements excluded or restored by exclusion keywords",
		},
		[]string{"direction"},
	)

	deactivatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subvention_deactivated_subventions_total",
		Help: "Subventions deactivated by exclusion keywords",
	})
)

// KeywordLister lists active keywords with their live exclusion counts.
type KeywordLister interface {
	ListActiveKeywords(ctx context.Context) ([]models.ExclusionKeyword, error)
}

// KeywordCollector is a custom Prometheus collector that reads live
// exclusion counts from the database on each scrape.
type KeywordCollector struct {
	lister KeywordLister
}

// NewKeywordCollector returns a collector backed by lister.
func NewKeywordCollector(lister KeywordLister) *KeywordCollector {
	return &KeywordCollector{lister: lister}
}

// Describe sends the metric descriptor to the channel.
func (c *KeywordCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- liveExclusionsDesc
}

// Collect emits one gauge per active keyword.
func (c *KeywordCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	keywords, err := c.lister.ListActiveKeywords(ctx)
	if err != nil {
		slog.Error("failed to collect exclusion keyword metrics", "error", err)
		return
	}
	for _, k := range keywords {
		ch <- prometheus.MustNewConstMetric(
			liveExclusionsDesc,
			prometheus.GaugeValue,
			float64(k.LiveExclusionCount),
			k.Name,
		)
	}
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(lister KeywordLister) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			NewKeywordCollector(lister),
			operationsTotal,
			operationDuration,
			reclassifiedTotal,
			deactivatedTotal,
		)
	})
}

// ObserveOperation records the outcome and duration of an apply or revoke.
func ObserveOperation(operation, outcome string, started time.Time) {
	operationsTotal.WithLabelValues(operation, outcome).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RecordApply counts the rows an apply changed.
func RecordApply(r *models.ApplyResult) {
	reclassifiedTotal.WithLabelValues("excluded").Add(float64(r.UpdatedCount))
	deactivatedTotal.Add(float64(r.DeactivatedCount))
}

// RecordRevoke counts the announcements a revoke restored.
func RecordRevoke(r *models.RevokeResult) {
	reclassifiedTotal.WithLabelValues("restored").Add(float64(r.RestoredCount))
}

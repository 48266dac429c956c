package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rustyeddy/riskbudget/plan"
)

// Recorder exports plan outcomes to Prometheus.
type Recorder struct {
	plansTotal    prometheus.Counter
	planDuration  prometheus.Histogram
	usedRisk      prometheus.Gauge
	leftover      prometheus.Gauge
	activeTrades  prometheus.Gauge
	missingPrices prometheus.Gauge
	tradeRisk     *prometheus.GaugeVec
	errorsTotal   *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer
// for the process-wide registry.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		plansTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "riskbudget_plans_total",
			Help: "Total number of plans computed",
		}),
		planDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskbudget_plan_duration_seconds",
			Help:    "Time to load, price, allocate and size a plan",
			Buckets: prometheus.DefBuckets,
		}),
		usedRisk: f.NewGauge(prometheus.GaugeOpts{
			Name: "riskbudget_used_risk_percent",
			Help: "Risk allocated by the latest plan, in percent of capital",
		}),
		leftover: f.NewGauge(prometheus.GaugeOpts{
			Name: "riskbudget_leftover_risk_percent",
			Help: "Budget left unallocated by the latest plan",
		}),
		activeTrades: f.NewGauge(prometheus.GaugeOpts{
			Name: "riskbudget_active_trades",
			Help: "Trades that received risk in the latest plan",
		}),
		missingPrices: f.NewGauge(prometheus.GaugeOpts{
			Name: "riskbudget_missing_prices",
			Help: "Pairs that could not be priced in the latest refresh",
		}),
		tradeRisk: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "riskbudget_trade_risk_percent",
			Help: "Risk allocated to each trade by the latest plan",
		}, []string{"deal", "pair"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskbudget_errors_total",
			Help: "Total number of errors encountered",
		}, []string{"type"}),
	}
}

// ObservePlan implements plan.Observer.
func (r *Recorder) ObservePlan(p plan.Plan, took time.Duration) {
	r.plansTotal.Inc()
	r.planDuration.Observe(took.Seconds())
	r.usedRisk.Set(p.Summary.UsedRisk)
	r.leftover.Set(p.Summary.Leftover)
	r.activeTrades.Set(float64(p.Summary.ActiveCount))
	r.missingPrices.Set(float64(len(p.Missing)))

	r.tradeRisk.Reset()
	for _, row := range p.Rows {
		r.tradeRisk.WithLabelValues(row.ID, row.Pair).Set(row.Risk)
	}
}

// RecordError counts an error by kind, e.g. "plan" or "store".
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

var _ plan.Observer = (*Recorder)(nil)

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_jobs_created_total",
			Help: "Number of jobs posted with escrow locked.",
		},
	)

	submissionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_submissions_created_total",
			Help: "Number of worker submissions accepted.",
		},
	)

	submissionsScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_submissions_scored_total",
			Help: "Number of scoring calls committed (re-scores included).",
		},
	)

	settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_settlements_total",
			Help: "Settlement attempts by result.",
		},
		[]string{"result"},
	)

	payoutTokens = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_payout_tokens_total",
			Help: "Sum of tokens distributed by committed settlements.",
		},
	)
)

func init() {
	register(jobsCreated, submissionsCreated, submissionsScored, settlements, payoutTokens)
}

func IncJobCreated()        { jobsCreated.Inc() }
func IncSubmissionCreated() { submissionsCreated.Inc() }
func IncSubmissionScored()  { submissionsScored.Inc() }

// IncSettlement records a settlement attempt; result is "ok" or "error".
func IncSettlement(result string) { settlements.WithLabelValues(result).Inc() }

func AddPayoutTokens(n int64) { payoutTokens.Add(float64(n)) }

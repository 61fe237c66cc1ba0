// Package metrics exposes Prometheus counters for the posting engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JournalsPosted counts successfully committed journal entries by type.
	JournalsPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "journals_posted_total",
		Help:      "Number of journal entries posted, by journal type.",
	}, []string{"type"})

	// AuthorizationDeclines counts declined card/ATM/POS attempts by reason code.
	AuthorizationDeclines = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "authorization_declines_total",
		Help:      "Number of declined authorization attempts, by decline code.",
	}, []string{"code"})

	// AuthorizationsCompleted counts completed card/ATM/POS attempts by kind.
	AuthorizationsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "authorizations_completed_total",
		Help:      "Number of completed authorization attempts, by kind.",
	}, []string{"kind"})

	// ConcurrencyRetries counts postings retried after a concurrency conflict.
	ConcurrencyRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "posting_concurrency_retries_total",
		Help:      "Number of postings retried after a concurrent modification conflict.",
	})
)

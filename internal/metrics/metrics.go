package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Resolution outcomes recorded by the resolver
const (
	ResolutionDirect      = "direct"
	ResolutionAccepted    = "accepted"
	ResolutionRejected    = "rejected"
	ResolutionUnmatchable = "unmatchable"
	ResolutionNoCandidate = "no_candidate"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	wagersPlaced   *prometheus.CounterVec
	stakeVolume    prometheus.Counter
	settlements    *prometheus.CounterVec
	payouts        prometheus.Counter
	resolutions    *prometheus.CounterVec
	balance        prometheus.Gauge
	offersIngested prometheus.Counter
	offersRejected prometheus.Counter
}

// New creates the collectors and registers them with reg when it is not nil
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		wagersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wager_settlement_wagers_placed_total",
			Help: "Wagers placed by bet type",
		}, []string{"type"}),
		stakeVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wager_settlement_stake_volume_total",
			Help: "Sum of stakes placed",
		}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wager_settlement_groups_settled_total",
			Help: "Wager groups settled by bet type",
		}, []string{"type"}),
		payouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wager_settlement_payout_total",
			Help: "Sum of amounts returned by settlement",
		}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wager_settlement_resolutions_total",
			Help: "Match resolution outcomes",
		}, []string{"outcome"}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wager_settlement_balance",
			Help: "Current ledger balance",
		}),
		offersIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wager_settlement_offers_ingested_total",
			Help: "Odds feed records turned into offers",
		}),
		offersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wager_settlement_offers_rejected_total",
			Help: "Odds feed records dropped as invalid",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.wagersPlaced, m.stakeVolume, m.settlements, m.payouts,
			m.resolutions, m.balance, m.offersIngested, m.offersRejected,
		)
	}
	return m
}

func (m *Metrics) WagerPlaced(kind string, stake decimal.Decimal) {
	if m == nil {
		return
	}
	m.wagersPlaced.WithLabelValues(kind).Inc()
	m.stakeVolume.Add(stake.InexactFloat64())
}

func (m *Metrics) GroupSettled(kind string, payout decimal.Decimal) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(kind).Inc()
	m.payouts.Add(payout.InexactFloat64())
}

func (m *Metrics) Resolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetBalance(balance decimal.Decimal) {
	if m == nil {
		return
	}
	m.balance.Set(balance.InexactFloat64())
}

func (m *Metrics) OffersIngested(n int) {
	if m == nil {
		return
	}
	m.offersIngested.Add(float64(n))
}

func (m *Metrics) OffersRejected(n int) {
	if m == nil {
		return
	}
	m.offersRejected.Add(float64(n))
}

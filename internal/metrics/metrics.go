// metrics.go — Prometheus decorator over the supervisor broadcaster.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hamishmack/daedalus/internal/lifecycle"
	"github.com/hamishmack/daedalus/internal/supervisor"
)

// Broadcaster counts lifecycle transitions and TLS handshakes, then
// forwards each event to the wrapped broadcaster.
type Broadcaster struct {
	inner supervisor.Broadcaster

	transitions   *prometheus.CounterVec
	tlsBroadcasts prometheus.Counter
}

// Wrap registers the launcher metrics on reg and returns the
// decorated broadcaster.
func Wrap(reg prometheus.Registerer, inner supervisor.Broadcaster) *Broadcaster {
	b := &Broadcaster{
		inner: inner,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daedalus_state_transitions_total",
			Help: "Node lifecycle transitions, labeled by the state entered.",
		}, []string{"state"}),
		tlsBroadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daedalus_tls_broadcasts_total",
			Help: "TLS configurations harvested from the node and broadcast.",
		}),
	}
	reg.MustRegister(b.transitions, b.tlsBroadcasts)
	return b
}

// BroadcastStateChange counts the transition and forwards it.
func (b *Broadcaster) BroadcastStateChange(state lifecycle.State) {
	b.transitions.WithLabelValues(state.String()).Inc()
	b.inner.BroadcastStateChange(state)
}

// BroadcastTLSConfig counts the handshake and forwards it.
func (b *Broadcaster) BroadcastTLSConfig(tls supervisor.TLSConfig) {
	b.tlsBroadcasts.Inc()
	b.inner.BroadcastTLSConfig(tls)
}

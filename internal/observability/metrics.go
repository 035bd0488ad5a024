package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danmuck/wirectl/internal/packet"
)

var (
	registerOnce sync.Once

	packetsPacked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirectl",
			Subsystem: "codec",
			Name:      "packets_packed_total",
			Help:      "Packets serialized to wire form.",
		},
		[]string{"outcome"},
	)
	packetsParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirectl",
			Subsystem: "codec",
			Name:      "packets_parsed_total",
			Help:      "Raw buffers run through the parser.",
		},
		[]string{"outcome"},
	)
	codecFaults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirectl",
			Subsystem: "codec",
			Name:      "faults_total",
			Help:      "Stage faults recorded while packing or parsing.",
		},
		[]string{"stage"},
	)
)

// RegisterMetrics installs the codec collectors on the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(packetsPacked, packetsParsed, codecFaults)
	})
}

// ObservePack records one Pack call and its stage faults.
func ObservePack(p *packet.Packet, ok bool) {
	packetsPacked.WithLabelValues(outcome(ok)).Inc()
	countFaults(p)
}

// ObserveParse records one Parse call and its stage faults.
func ObserveParse(p *packet.Packet, ok bool) {
	packetsParsed.WithLabelValues(outcome(ok)).Inc()
	countFaults(p)
}

func countFaults(p *packet.Packet) {
	for _, f := range p.Faults {
		codecFaults.WithLabelValues(f.Stage.String()).Inc()
	}
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}

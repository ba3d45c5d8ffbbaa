package corr

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics tracks per-device correspondence-table gauges and counters. Each
// Device registers its own vector of label values so a process driving
// several accelerators reports them separately. Only the map_ops_total and
// copy_bytes_total counters are updated; the entries, allocation_bytes and
// attach_fixups gauges are registered but never set, so they read zero.
type metrics struct {
	deviceID string

	entries     prometheus.Gauge
	allocBytes  prometheus.Gauge
	mapOps      *prometheus.CounterVec
	copyBytes   *prometheus.CounterVec
	attachCount prometheus.Gauge
}

var registerOnce sync.Once

var (
	entriesVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "goaccmem",
		Name:      "entries",
		Help:      "Number of mapping entries currently installed in the correspondence table.",
	}, []string{"device"})

	allocBytesVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "goaccmem",
		Name:      "allocation_bytes",
		Help:      "Bytes of device memory currently owned by allocation records.",
	}, []string{"device"})

	mapOpsVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goaccmem",
		Name:      "map_ops_total",
		Help:      "Map-engine operations by kind.",
	}, []string{"device", "op"})

	copyBytesVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goaccmem",
		Name:      "copy_bytes_total",
		Help:      "Bytes copied across the host/device boundary, by direction.",
	}, []string{"device", "direction"})

	attachCountVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "goaccmem",
		Name:      "attach_fixups",
		Help:      "Outstanding attach fix-ups across all entries.",
	}, []string{"device"})
)

func newMetrics(deviceID int) *metrics {
	registerOnce.Do(func() {
		prometheus.MustRegister(entriesVec, allocBytesVec, mapOpsVec, copyBytesVec, attachCountVec)
	})

	id := fmt.Sprintf("%d", deviceID)

	return &metrics{
		deviceID:    id,
		entries:     entriesVec.WithLabelValues(id),
		allocBytes:  allocBytesVec.WithLabelValues(id),
		mapOps:      mapOpsVec,
		copyBytes:   copyBytesVec,
		attachCount: attachCountVec.WithLabelValues(id),
	}
}

func (m *metrics) observeMap(op string) {
	m.mapOps.WithLabelValues(m.deviceID, op).Inc()
}

func (m *metrics) observeCopy(direction string, n int) {
	m.copyBytes.WithLabelValues(m.deviceID, direction).Add(float64(n))
}

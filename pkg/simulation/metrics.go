package simulation

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"particle-sim/pkg/quadtree"
)

const metricsNamespace = "particles"

// Metrics holds the collectors updated by a Simulator on every step.
type Metrics struct {
	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram
	Particles    prometheus.Gauge
	NonFinite    prometheus.Gauge
	TreeNodes    prometheus.Gauge
	TreeLeaves   prometheus.Gauge
	TreeDepth    prometheus.Gauge
	MaxLeafLen   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ticks_total",
			Help:      "Number of simulation ticks run.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "tick_duration_seconds",
			Help:      "Time to build the quadtree and advance all particles once.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		Particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "count",
			Help:      "Number of particles in the buffer.",
		}),
		NonFinite: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "non_finite",
			Help:      "Particles whose position became NaN or infinite.",
		}),
		TreeNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "tree",
			Name:      "nodes",
			Help:      "Nodes in the last quadtree.",
		}),
		TreeLeaves: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "tree",
			Name:      "leaves",
			Help:      "Leaves in the last quadtree.",
		}),
		TreeDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "tree",
			Name:      "depth",
			Help:      "Depth of the deepest leaf in the last quadtree.",
		}),
		MaxLeafLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "tree",
			Name:      "max_leaf_particles",
			Help:      "Particles held by the fullest leaf in the last quadtree.",
		}),
	}
	reg.MustRegister(m.Ticks, m.TickDuration, m.Particles, m.NonFinite,
		m.TreeNodes, m.TreeLeaves, m.TreeDepth, m.MaxLeafLen)
	return m
}

func (m *Metrics) observeTree(s quadtree.Stats) {
	m.TreeNodes.Set(float64(s.Nodes))
	m.TreeLeaves.Set(float64(s.Leaves))
	m.TreeDepth.Set(float64(s.MaxDepth))
	m.MaxLeafLen.Set(float64(s.MaxLeafLen))
}

// Listen serves /metrics and /healthz on listenAddr in the background. The process exits
// if the server fails.
func Listen(listenAddr string, gatherer prometheus.Gatherer) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("ok"))
		})

		server := &http.Server{
			Addr:    listenAddr,
			Handler: mux,
		}
		klog.Infof("Serving metrics on %s", listenAddr)
		klog.Fatal(server.ListenAndServe())
	}()
}

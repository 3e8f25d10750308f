package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "revgeo_records_total",
		Help: "Total number of records passed through the augmentation filter",
	})
	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "revgeo_lookups_total",
		Help: "Region table lookups by derived column kind and result",
	}, []string{"kind", "result"})
	NullCoordinatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "revgeo_null_coordinates_total",
		Help: "Records whose latitude or longitude was null",
	})
	StreamsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "revgeo_streams_total",
		Help: "Filter streams by terminal state",
	}, []string{"state"})
	RegionTableSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "revgeo_region_table_size",
		Help: "Number of regions in the loaded lookup table",
	})
)

func init() {
	prometheus.MustRegister(RecordsTotal)
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(NullCoordinatesTotal)
	prometheus.MustRegister(StreamsTotal)
	prometheus.MustRegister(RegionTableSize)
}

// ObserveLookup counts one region lookup for the given derived column kind.
func ObserveLookup(kind string, found bool) {
	result := "hit"
	if !found {
		result = "miss"
	}
	LookupsTotal.WithLabelValues(kind, result).Inc()
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }

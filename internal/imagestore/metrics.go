package imagestore

import "github.com/prometheus/client_golang/prometheus"

var cacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "virtualtourist_image_cache_lookups_total",
		Help: "Image cache lookups by the tier that answered them.",
	},
	[]string{"result"}, // memory, disk or miss
)

func init() {
	prometheus.MustRegister(cacheLookups)
}

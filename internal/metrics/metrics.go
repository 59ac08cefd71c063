package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MediaExamined counts media entities considered for a dimension update.
	MediaExamined = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dimensions_media_examined_total",
		Help: "Media entities examined during dimension update runs.",
	}, []string{"media_use"})

	// DimensionsWritten counts media entities whose dimensions were persisted.
	DimensionsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dimensions_written_total",
		Help: "Media entities whose width/height fields were updated.",
	}, []string{"media_use"})

	// LookupErrors counts failed image server dimension lookups.
	LookupErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dimensions_lookup_errors_total",
		Help: "Failed dimension lookups against the image server.",
	})
)

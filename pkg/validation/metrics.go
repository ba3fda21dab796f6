package validation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txcomposer_validation_outcomes_total",
		Help: "Number of slot validations by outcome",
	}, []string{"outcome"})
)

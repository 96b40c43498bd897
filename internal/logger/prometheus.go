package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// logStatements counts written log events per service and level.
var logStatements = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "log_statements_total",
		Help: "Number of log statements, differentiated by service and log level.",
	},
	[]string{"service", "level"},
)

// LevelCounterHook is a zerolog.Hook incrementing log_statements_total for every event.
type LevelCounterHook struct {
	service string
}

// NewLevelCounterHook returns the hook counting the log events of service.
func NewLevelCounterHook(service string) LevelCounterHook {
	return LevelCounterHook{service: service}
}

// Run implements zerolog.Hook. Events without a level are not counted.
func (h LevelCounterHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel {
		return
	}

	logStatements.WithLabelValues(h.service, level.String()).Inc()
}

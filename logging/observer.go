package logging

import (
	"log/slog"
	"time"

	"github.com/skekre98/locator/core"
)

// Observer logs container activity: successful resolutions and builds at
// debug, failures at warn with the error kind.
type Observer struct {
	logger *slog.Logger
}

func NewObserver(l *slog.Logger) *Observer {
	return &Observer{logger: l.With(slog.String("component", "container"))}
}

func (o *Observer) ObserveResolution(r core.Resolution) {
	if r.Err != nil {
		o.logger.Warn("service resolution failed",
			"service", r.Name,
			"type", r.Type.String(),
			"kind", core.ErrorKind(r.Err),
			"error", r.Err,
		)
		return
	}
	o.logger.Debug("service resolved",
		"service", r.Name,
		"type", r.Type.String(),
		"cached", r.Cached,
		"duration", r.Duration,
	)
}

func (o *Observer) ObserveBuild(t core.TypeID, d time.Duration) {
	o.logger.Debug("instance built", "type", t.String(), "duration", d)
}

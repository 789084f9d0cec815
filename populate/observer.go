package populate

import (
	"github.com/rs/zerolog"

	"github.com/populatedb/populatedb/key"
)

// Observer receives the per key events of a populate call: start, success,
// skip, retry and failure. It is for logging and progress reporting only,
// control flow never depends on it.
type Observer interface {
	Started(k key.Key)
	Done(k key.Key)
	Skipped(k key.Key)
	Retry(k key.Key, culprit string, attempt int)
	Failed(k key.Key, err error)
}

// observe isolates observer calls: a panicking observer must not change the
// outcome of the computation.
func observe(f func()) {
	defer func() {
		recover()
	}()
	f()
}

type nopObserver struct{}

func (nopObserver) Started(key.Key)            {}
func (nopObserver) Done(key.Key)               {}
func (nopObserver) Skipped(key.Key)            {}
func (nopObserver) Retry(key.Key, string, int) {}
func (nopObserver) Failed(key.Key, error)      {}

// LogObserver writes one line per key event.
func LogObserver(logger zerolog.Logger) Observer {
	return &logObserver{logger: logger}
}

type logObserver struct {
	logger zerolog.Logger
}

func (o *logObserver) Started(k key.Key) {
	o.logger.Info().Stringer("key", k).Msg("populating")
}

func (o *logObserver) Done(k key.Key) {
	o.logger.Info().Stringer("key", k).Msg("populated")
}

func (o *logObserver) Skipped(k key.Key) {
	o.logger.Debug().Stringer("key", k).Msg("already populated")
}

func (o *logObserver) Retry(k key.Key, culprit string, attempt int) {
	o.logger.Info().Stringer("key", k).Str("culprit", culprit).Int("attempt", attempt).Msg("transaction conflict, will retry")
}

func (o *logObserver) Failed(k key.Key, err error) {
	o.logger.Error().Stringer("key", k).Err(err).Msg("populate failed")
}

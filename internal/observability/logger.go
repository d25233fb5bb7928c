package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger tags the global logger with the binary name and returns it.
func InitLogger(app string) zerolog.Logger {
	logger := log.Logger.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

// LogExchange writes one exchange event: error for transport failures,
// warn for a non-zero device status, debug otherwise.
func LogExchange(logger zerolog.Logger, rec ExchangeRecord) {
	event := logger.Debug()
	switch {
	case rec.Err != nil && rec.Status < 0:
		event = logger.Error().Err(rec.Err)
	case rec.Status != 0:
		event = logger.Warn()
	}
	event.
		Str("verb", rec.Verb).
		Str("subject", rec.Subject).
		Str("status", rec.statusLabel()).
		Dur("duration", rec.Duration).
		Msg("session.Exchange")
}

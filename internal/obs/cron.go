package obs

import (
	"github.com/rs/zerolog"
)

// CronLogger adapts zerolog to the robfig/cron Logger interface.
type CronLogger struct {
	Logger zerolog.Logger
}

// Info logs routine scheduler events at debug level; cron emits one per tick.
func (l CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Error logs scheduler failures such as recovered job panics.
func (l CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

package core

import "github.com/hupe1980/agentzero/logging"

// loggerAdapter gives run and tool contexts the LogDebug..LogError shorthands
// over a never-nil logging.Logger.
type loggerAdapter struct {
	logger logging.Logger
}

// newLoggerAdapter wraps l, substituting NoOpLogger for nil. An AgentLogger
// is scoped to invocationID so every record of a delegation tree carries it.
func newLoggerAdapter(l logging.Logger, invocationID string) *loggerAdapter {
	if l == nil {
		return &loggerAdapter{logger: logging.NoOpLogger{}}
	}

	if al, ok := l.(*logging.AgentLogger); ok && al != nil && invocationID != "" {
		l = al.WithInvocation(invocationID)
	}

	return &loggerAdapter{logger: l}
}

// Logger returns the wrapped logger.
func (l *loggerAdapter) Logger() logging.Logger { return l.logger }

func (l *loggerAdapter) LogDebug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *loggerAdapter) LogInfo(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *loggerAdapter) LogWarn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *loggerAdapter) LogError(msg string, args ...any) { l.logger.Error(msg, args...) }

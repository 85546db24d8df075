package evtdata

import "log/slog"

type Logger interface {
	Info(message string, module string)
	Error(string)
}

// slogLogger routes library messages through the process-wide slog logger
// until SetLogger installs something else.
type slogLogger struct{}

func (slogLogger) Info(message string, module string) {
	slog.Info(message, "module", module)
}

func (slogLogger) Error(message string) {
	slog.Error(message)
}

var logger Logger = slogLogger{}

func SetLogger(l Logger) {
	logger = l
}

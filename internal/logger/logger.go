package logger

import "go.uber.org/zap"

// New builds a zap logger for the given environment: JSON in
// production, console elsewhere. Callers own the Sync call.
func New(env string) *zap.Logger {
	var l *zap.Logger
	if env == "production" || env == "prod" {
		l, _ = zap.NewProduction()
	} else {
		l, _ = zap.NewDevelopment()
	}
	return l
}

// Package notify is the toast analog for a headless client: outcomes
// of user actions are reported through a fire-and-forget sink.
package notify

import "go.uber.org/zap"

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// Notifier surfaces one-line outcomes of mutations and commands. No
// return value; failures to notify are not the caller's problem.
type Notifier interface {
	Notify(kind Kind, message string)
}

// LogNotifier writes notifications to the application logger.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(kind Kind, message string) {
	switch kind {
	case Error:
		n.log.Warn(message, zap.String("kind", string(kind)))
	default:
		n.log.Info(message, zap.String("kind", string(kind)))
	}
}

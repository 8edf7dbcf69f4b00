package pos

import "log/slog"

type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Notice is one user-visible, dismissible notification.
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives notices produced while handling an operation. Every
// failure described in the error taxonomy ends up here; nothing is
// swallowed silently.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier routes notices to a structured logger, for headless runs and
// tests that only care about state.
func LogNotifier(log *slog.Logger) Notifier {
	return NotifierFunc(func(n Notice) {
		switch n.Level {
		case LevelError:
			log.Error(n.Message)
		case LevelWarn:
			log.Warn(n.Message)
		default:
			log.Info(n.Message)
		}
	})
}

package observability

import (
	"log/slog"

	"github.com/recoverly/flowedit/pkg/domain"
)

// LoggingHooks logs every lifecycle event. Rejections log at warn level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	info := func(e *domain.EditEvent) {
		logger.Info(string(e.Type),
			"automation_id", e.AutomationID,
			"op", e.Op,
			"history_len", e.HistoryLen,
			"history_pos", e.HistoryPos,
		)
	}
	return domain.LifecycleHooks{
		OnEdit: info,
		OnEditRejected: func(e *domain.EditEvent) {
			logger.Warn(string(e.Type),
				"automation_id", e.AutomationID,
				"op", e.Op,
				"err", e.Err,
			)
		},
		OnUndo: info,
		OnRedo: info,
		OnSave: info,
	}
}

package server

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kush-Singh-26/devserve/internal/watch"
)

// watchRoot broadcasts a reload for every debounced change under the served
// root. Serving continues without reload if the watcher can't start.
func (s *Server) watchRoot(ctx context.Context) error {
	w, err := watch.New([]string{s.root}, s.debounce, func(e watch.Event) {
		s.lg.Debug("change detected", zap.String("path", e.Name), zap.Stringer("op", e.Op))
		s.hub.Broadcast()
	})
	if err != nil {
		s.lg.Warn("live reload disabled", zap.Error(err))
		return nil
	}

	return w.Start(ctx)
}

package handlers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/pkg/application"
	"github.com/iota-uz/org-console/pkg/resource"
)

// recordPather is implemented by the entity CRUD controllers.
type recordPather interface {
	Kind() string
	RecordPath(id int64) string
}

// FavoritesCleanupHandler drops record favorites whose record was deleted.
type FavoritesCleanupHandler struct {
	app    application.Application
	logger logrus.FieldLogger
}

func NewFavoritesCleanupHandler(app application.Application, logger logrus.FieldLogger) *FavoritesCleanupHandler {
	return &FavoritesCleanupHandler{app: app, logger: logger}
}

func RegisterFavoritesEventHandlers(app application.Application, logger logrus.FieldLogger) {
	handler := NewFavoritesCleanupHandler(app, logger)
	app.EventPublisher().Subscribe(handler.onEntityDeleted)
}

func (h *FavoritesCleanupHandler) recordPath(kind string, id int64) (string, bool) {
	for _, c := range h.app.Controllers() {
		if p, ok := c.(recordPather); ok && p.Kind() == kind {
			return p.RecordPath(id), true
		}
	}
	return "", false
}

func (h *FavoritesCleanupHandler) onEntityDeleted(event *resource.DeletedEvent) {
	store := h.app.Favorites()
	if store == nil || event == nil {
		return
	}
	path, ok := h.recordPath(event.Kind, event.ID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	removed, err := store.RemoveByPath(ctx, path)
	logger := h.logger.WithFields(logrus.Fields{"entity": event.Kind, "id": event.ID})
	if err != nil {
		logger.WithError(err).Warn("failed to drop favorite of deleted record")
		return
	}
	if removed > 0 {
		logger.WithField("removed", removed).Info("dropped favorites of deleted record")
	}
}

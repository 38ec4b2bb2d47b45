package handler

import (
	"context"

	"appointment-backend/internal/middleware"
	"appointment-backend/internal/models"
	"appointment-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SyncTaskManager interface {
	ListByStatus(ctx context.Context, status string) ([]models.UserSyncTask, error)
	Retry(ctx context.Context, taskID uint, actorID uint) (*models.UserSyncTask, error)
}

// SyncTaskHandler exposes the doctor to user sync outbox for reconciliation (admin only)
type SyncTaskHandler struct {
	tasks  SyncTaskManager
	logger *zap.Logger
}

func NewSyncTaskHandler(tasks SyncTaskManager, logger *zap.Logger) *SyncTaskHandler {
	return &SyncTaskHandler{tasks: tasks, logger: logger}
}

// List returns tasks in ?status=, failed by default
func (h *SyncTaskHandler) List(c *gin.Context) {
	status := c.DefaultQuery("status", models.SyncStatusFailed)

	tasks, err := h.tasks.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.ListResponse(c, "tasks", tasks)
}

func (h *SyncTaskHandler) Retry(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Retry(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, task)
}

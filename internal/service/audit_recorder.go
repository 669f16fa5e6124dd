package service

import (
	"context"
	"time"

	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"
	"go-kiosk-pos/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const auditWriteTimeout = 5 * time.Second

type AuditEntry struct {
	ActorID    *uuid.UUID
	ActorName  string
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Metadata   map[string]interface{}
}

// AuditRecorder appends to the audit log. Record never fails the caller.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
	List(ctx context.Context, limit int) ([]model.AuditLog, error)
}

type auditRecorder struct {
	repo repository.AuditRepository
}

func NewAuditRecorder(repo repository.AuditRepository) AuditRecorder {
	return &auditRecorder{repo: repo}
}

func (r *auditRecorder) Record(ctx context.Context, entry AuditEntry) {
	// The action already happened; a client disconnect must not lose its record.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	row := &model.AuditLog{
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
	}
	if entry.Metadata != nil {
		row.Metadata = datatypes.JSONMap(entry.Metadata)
	}

	if err := r.repo.Create(ctx, row); err != nil {
		logger.Error(ctx).Err(err).
			Str("action", entry.Action).
			Str("entity_type", entry.EntityType).
			Msg("audit write failed")
	}
}

func (r *auditRecorder) List(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	return r.repo.List(ctx, limit)
}

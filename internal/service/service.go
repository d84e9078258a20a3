package service

import (
	"context"

	"go-gudang-kelurahan/internal/apperr"
	"go-gudang-kelurahan/internal/cache"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/repository"
	"go-gudang-kelurahan/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is the caller identity passed explicitly into every operation.
// The core never reads ambient session state.
type Actor struct {
	ID      string
	Name    string
	Email   string
	IsAdmin bool
}

// sideEffects bundles the non-fatal side channels of a mutation: the audit
// trail, the websocket invalidation signal and the list cache. Failures here
// are logged and swallowed; they never fail the primary operation.
type sideEffects struct {
	audit repository.AuditRepository
	hub   *ws.Hub
	cache cache.ListCache
	log   *zap.SugaredLogger
}

func newSideEffects(audit repository.AuditRepository, hub *ws.Hub, c cache.ListCache, log *zap.SugaredLogger) sideEffects {
	if c == nil {
		c = cache.Noop{}
	}
	return sideEffects{audit: audit, hub: hub, cache: c, log: log}
}

// record appends one audit entry and notifies connected clients.
func (fx *sideEffects) record(actor Actor, action, table, subject string) {
	if uid, err := uuid.Parse(actor.ID); err == nil {
		entry := &model.AuditLog{
			UserID:    uid,
			Action:    action,
			TableName: table,
			Subject:   subject,
		}
		if err := fx.audit.Create(entry); err != nil {
			fx.log.Warnw("gagal mencatat log aktivitas", "action", action, "error", err)
		}
	}
	if fx.hub != nil {
		fx.hub.Notify(table, action, subject, actor.Name)
	}
}

func (fx *sideEffects) invalidate(keys ...string) {
	if err := fx.cache.Invalidate(context.Background(), keys...); err != nil {
		fx.log.Warnw("gagal invalidasi cache", "keys", keys, "error", err)
	}
}

// wrapErr converts storage errors into the generic transaction failure the
// handlers expose. The caller only sees the sanitized message, so the real
// cause is logged here before it is discarded.
func wrapErr(log *zap.SugaredLogger, err error, message string) error {
	if err != nil && apperr.CodeOf(err) == apperr.CodeTxFailure {
		log.Errorw(message, "error", err)
	}
	return apperr.Wrap(err, message)
}

func (fx *sideEffects) wrap(err error, message string) error {
	return wrapErr(fx.log, err, message)
}

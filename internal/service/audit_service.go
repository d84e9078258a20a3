package service

import (
	"context"
	"encoding/json"
	"time"

	"go-gudang-kelurahan/internal/cache"
	"go-gudang-kelurahan/internal/model"
	"go-gudang-kelurahan/internal/repository"

	"go.uber.org/zap"
)

const (
	auditRecentLimit = 50
	auditRecentTTL   = time.Minute
)

// AuditService exposes the recent activity feed.
type AuditService interface {
	Recent() ([]model.AuditLog, error)
}

type auditService struct {
	repo  repository.AuditRepository
	cache cache.ListCache
	log   *zap.SugaredLogger
}

func NewAuditService(repo repository.AuditRepository, c cache.ListCache, log *zap.SugaredLogger) AuditService {
	if c == nil {
		c = cache.Noop{}
	}
	return &auditService{repo: repo, cache: c, log: log}
}

func (s *auditService) Recent() ([]model.AuditLog, error) {
	ctx := context.Background()
	if payload, ok, _ := s.cache.Get(ctx, cache.KeyAuditRecent); ok {
		var entries []model.AuditLog
		if err := json.Unmarshal(payload, &entries); err == nil {
			return entries, nil
		}
	}
	entries, err := s.repo.Recent(auditRecentLimit)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(entries); err == nil {
		if err := s.cache.Set(ctx, cache.KeyAuditRecent, payload, auditRecentTTL); err != nil {
			s.log.Warnw("gagal menyimpan cache log aktivitas", "error", err)
		}
	}
	return entries, nil
}

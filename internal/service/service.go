// Package service holds the marketplace rule-set: identity and access,
// project lifecycle, the application workflow and both review kinds.
// Every mutating operation runs inside one UnitOfWork transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"freelance-market/internal/core/cache"
	"freelance-market/internal/domain"
)

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hashed string) bool
}

type TokenIssuer interface {
	Issue(uid uint, role string) (string, error)
	Subject(token string) (uint, error)
}

// Deps is shared by every service.
type Deps struct {
	UoW   domain.UnitOfWork
	Cache *cache.Cache // optional
	Log   *zap.Logger  // optional
	TTL   CacheTTL
}

type CacheTTL struct {
	Profile time.Duration
	Stats   time.Duration
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Page normalises offset/limit coming from query strings.
func Page(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}
	return offset, limit
}

func profileKey(id uint) string      { return fmt.Sprintf("user:profile:%d", id) }
func projectStatsKey(id uint) string { return fmt.Sprintf("project:stats:%d", id) }

// storeErr keeps domain errors as they are and wraps everything else as internal.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Internal(op+" failed", err)
}

func invalidate(ctx context.Context, c *cache.Cache, keys ...string) {
	c.Del(context.WithoutCancel(ctx), keys...)
}

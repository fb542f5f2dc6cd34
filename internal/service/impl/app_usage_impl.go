package impl

import (
	"context"
	"strings"
	"time"

	"auth/internal/domain"
	"auth/internal/service"
)

var _ service.AppUsageService = (*AppUsageServiceImpl)(nil)

const defaultAppName = "default"

// AppUsageServiceImpl keeps one user_apps row per (user, app) and bumps its
// updated_at on every successful authentication.
type AppUsageServiceImpl struct {
	Store      dataStore
	DefaultApp string
	now        func() time.Time
}

func NewAppUsageServiceImpl(st dataStore, defaultApp string) *AppUsageServiceImpl {
	return &AppUsageServiceImpl{Store: st, DefaultApp: defaultApp, now: time.Now}
}

func (a *AppUsageServiceImpl) RecordAppUsage(ctx context.Context, userID domain.UserID, appName string) error {
	return a.recordOn(ctx, a.Store, userID, appName)
}

func (a *AppUsageServiceImpl) recordOn(ctx context.Context, tx storeTx, userID domain.UserID, appName string) error {
	if err := tx.UserApps().Upsert(ctx, userID, a.appName(appName), a.clock()); err != nil {
		return storeError("upsert user app", err)
	}
	return nil
}

func (a *AppUsageServiceImpl) appName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if a.DefaultApp != "" {
		return a.DefaultApp
	}
	return defaultAppName
}

func (a *AppUsageServiceImpl) clock() time.Time {
	if a.now == nil {
		return time.Now().UTC()
	}
	return a.now().UTC()
}

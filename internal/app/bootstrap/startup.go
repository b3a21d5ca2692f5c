// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/ecahub/internal/app/resources"
	eventstore "github.com/dalemusser/ecahub/internal/app/store/events"
	userstore "github.com/dalemusser/ecahub/internal/app/store/users"
	"github.com/dalemusser/ecahub/internal/app/system/tasks"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// scheduler runs the background jobs between Startup and Shutdown.
var scheduler *tasks.Scheduler

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// shared templates, applies database deadlines, seeds the first super-admin
// and starts the background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if appCfg.SuperAdminEmail != "" {
		seedCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		defer cancel()
		users := userstore.New(deps.MongoDatabase)
		if err := ensureSuperAdmin(seedCtx, users, appCfg, logger); err != nil {
			return fmt.Errorf("ensure super-admin: %w", err)
		}
	}

	s := tasks.NewScheduler(logger)
	job := tasks.EventCompletionJob(eventstore.New(deps.MongoDatabase), logger, appCfg.EventCompletionSchedule, nil)
	if err := s.Add(job); err != nil {
		return err
	}
	s.Start()
	scheduler = s

	return nil
}

// SuperAdminSeeder is the slice of the user store the seed step needs.
type SuperAdminSeeder interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// ensureSuperAdmin creates the configured super-admin if no account holds
// that email yet. An existing account is never modified.
func ensureSuperAdmin(ctx context.Context, users SuperAdminSeeder, appCfg AppConfig, logger *zap.Logger) error {
	email := userstore.NormalizeEmail(appCfg.SuperAdminEmail)

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleSuperAdmin {
			logger.Warn("configured super-admin email belongs to another role; leaving it unchanged",
				zap.String("email", email), zap.String("role", string(existing.Role)))
		}
		return nil
	case !errors.Is(err, userstore.ErrNotFound):
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(appCfg.SuperAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := appCfg.SuperAdminName
	if name == "" {
		name = "Super Admin"
	}
	_, err = users.Create(ctx, models.User{
		FullName:     name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleSuperAdmin,
		Status:       models.UserStatusActive,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		// Another instance seeded it first.
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("created super-admin", zap.String("email", email))
	return nil
}

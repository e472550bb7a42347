package seed

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	appModels "github.com/studenthub/backend/internal/app/models"
	appRepos "github.com/studenthub/backend/internal/app/repositories"
	"github.com/studenthub/backend/internal/db"
	"github.com/studenthub/backend/internal/pkg/auth"
)

const (
	defaultAdminEmail    = "admin@studenthub.app"
	defaultAdminPassword = "Admin123!"
)

// CreateDefaultData ensures a default admin account exists so the review
// and reporting endpoints are reachable on a fresh database.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(database)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	exists, err := userRepo.EmailExists(ctx, defaultAdminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		finalErr = errors.Join(finalErr, err)
	} else if !exists {
		lgr.Info().Msg("Creating default admin user...")

		hashedPassword, err := auth.HashPassword(defaultAdminPassword)
		if err != nil {
			lgr.Error().Err(err).Msg("Error hashing admin password")
			finalErr = errors.Join(finalErr, err)
		} else {
			query, args, err := squirrel.Insert("users").
				Columns("name", "email", "password_hash", "role").
				Values("System Administrator", defaultAdminEmail, hashedPassword, appModels.RoleAdmin).
				Suffix("RETURNING id").
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				lgr.Error().Err(err).Msg("Error building admin insert query")
				finalErr = errors.Join(finalErr, err)
			} else {
				var adminID int64
				if err := database.Pool.QueryRow(ctx, query, args...).Scan(&adminID); err != nil {
					lgr.Error().Err(err).Msg("Error creating admin user")
					finalErr = errors.Join(finalErr, err)
				} else {
					lgr.Info().Int64("adminID", adminID).Msg("Default admin user created successfully")
				}
			}
		}
	} else {
		lgr.Info().Msg("Admin user already exists, skipping creation")
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

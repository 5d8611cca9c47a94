package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/apperrors"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/database"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/model"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db          *sql.DB
	navSchedule string
}

// NewSystemService creates a new SystemService.
// navSchedule is the configured NAV snapshot schedule, empty when disabled.
func NewSystemService(db *sql.DB, navSchedule string) *SystemService {
	return &SystemService{
		db:          db,
		navSchedule: navSchedule,
	}
}

// CheckHealth reports whether the ledger database is reachable.
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// CheckVersion returns the build version, the applied schema version and the
// optional features that are switched on.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	status, err := database.Status(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetVersionInfo, err)
	}

	info := model.VersionInfo{
		AppVersion:      version.Version,
		DbVersion:       strconv.FormatInt(status.Current, 10),
		LatestDbVersion: strconv.FormatInt(status.Latest, 10),
		MigrationNeeded: status.Pending,
		Features: map[string]bool{
			model.FeatureNAVSnapshotSchedule: s.navSchedule != "",
			model.FeatureLotSaleHistory:      true,
		},
	}
	if status.Pending {
		msg := fmt.Sprintf("database schema is at version %d, latest is %d", status.Current, status.Latest)
		info.MigrationMessage = &msg
	}
	return info, nil
}

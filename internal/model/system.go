package model

// Optional capabilities reported by the version endpoint.
const (
	FeatureNAVSnapshotSchedule = "nav_snapshot_schedule"
	FeatureLotSaleHistory      = "lot_sale_history"
)

// VersionInfo describes the running build and the ledger schema it sits on.
// DbVersion lags LatestDbVersion only while migrations are pending.
type VersionInfo struct {
	AppVersion       string          `json:"app_version"`
	DbVersion        string          `json:"db_version"`
	LatestDbVersion  string          `json:"latest_db_version"`
	Features         map[string]bool `json:"features"`
	MigrationNeeded  bool            `json:"migration_needed"`
	MigrationMessage *string         `json:"migration_message,omitempty"`
}

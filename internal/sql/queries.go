package sql

import (
	"embed"
)

// Migrations holds the schema DDL, applied in file name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/insert_run.sql
var InsertRun string

//go:embed queries/run_counts.sql
var RunCounts string

//go:embed queries/anomalies_by_type.sql
var AnomaliesByType string

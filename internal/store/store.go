// Package store persists generated runs into the synth Postgres schema.
package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/zedigen/internal/db"
	"github.com/gyeh/zedigen/internal/model"
	embedsql "github.com/gyeh/zedigen/internal/sql"
)

// Run identifies one stored generation run.
type Run struct {
	ID          uuid.UUID
	Seed        uint64
	Format      string
	AnomalyRate float64
	CreatedAt   time.Time
}

// RunFromSummary builds the run row for a finished generation.
func RunFromSummary(s model.RunSummary, anomalyRate float64, at time.Time) (Run, error) {
	id, err := uuid.Parse(s.RunID)
	if err != nil {
		return Run{}, fmt.Errorf("parse run id: %w", err)
	}
	return Run{ID: id, Seed: s.Seed, Format: s.Format, AnomalyRate: anomalyRate, CreatedAt: at}, nil
}

// SaveResult counts the rows written for a run.
type SaveResult struct {
	Claims       int64
	ServiceLines int64
	Anomalies    int64
	Duration     time.Duration
}

var (
	claimColumns = []string{
		"run_id", "claim_seq", "claim_id", "status",
		"patient_id", "patient_first_name", "patient_last_name", "patient_date_of_birth",
		"patient_gender", "patient_city", "patient_state", "patient_zip",
		"billing_npi", "billing_name", "rendering_npi",
		"total_charge_cents", "total_payment_cents", "total_adjustment_cents", "patient_responsibility_cents",
	}
	lineColumns = []string{
		"run_id", "claim_seq", "line_seq", "line_number",
		"procedure_code", "procedure_description", "service_date",
		"charge_cents", "payment_cents", "adjustment_cents", "units",
		"place_of_service", "revenue_code", "modifiers",
	}
	anomalyColumns = []string{
		"run_id", "claim_seq", "anomaly_seq", "anomaly_type",
		"description", "field", "original_value", "new_value",
	}
)

type indexed struct {
	seq int
	rec *model.Record
}

// Save inserts the run row and COPYs its claims, service lines and
// anomalies in one transaction. Either everything is stored or nothing is.
func Save(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, run Run, records []model.Record) (*SaveResult, error) {
	start := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, embedsql.InsertRun,
		run.ID, strconv.FormatUint(run.Seed, 10), run.Format, len(records), run.AnomalyRate, run.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	claims, err := copyClaims(ctx, tx, run.ID, records)
	if err != nil {
		return nil, err
	}

	var lines [][]any
	var anomalies [][]any
	for i := range records {
		r := &records[i]
		for j, sl := range r.Claim.ServiceLines {
			modifiers := sl.Modifiers
			if modifiers == nil {
				modifiers = []string{}
			}
			lines = append(lines, []any{
				run.ID, i, j, sl.LineNumber,
				sl.ProcedureCode, sl.ProcedureDescription, sl.ServiceDate,
				sl.ChargeAmount, sl.PaymentAmount, sl.AdjustmentAmount, sl.Units,
				sl.PlaceOfService, sl.RevenueCode, modifiers,
			})
		}
		for j, a := range r.Anomalies {
			anomalies = append(anomalies, []any{
				run.ID, i, j, string(a.Type), a.Description, a.Field, a.OriginalValue, a.NewValue,
			})
		}
	}

	nLines, err := tx.CopyFrom(ctx, pgx.Identifier{"synth", "service_lines"}, lineColumns, pgx.CopyFromRows(lines))
	if err != nil {
		return nil, fmt.Errorf("copy service lines: %w", err)
	}
	nAnomalies, err := tx.CopyFrom(ctx, pgx.Identifier{"synth", "anomalies"}, anomalyColumns, pgx.CopyFromRows(anomalies))
	if err != nil {
		return nil, fmt.Errorf("copy anomalies: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	res := &SaveResult{
		Claims:       claims,
		ServiceLines: nLines,
		Anomalies:    nAnomalies,
		Duration:     time.Since(start),
	}
	log.Info().
		Str("run_id", run.ID.String()).
		Int64("claims", res.Claims).
		Int64("service_lines", res.ServiceLines).
		Int64("anomalies", res.Anomalies).
		Str("duration", res.Duration.String()).
		Msg("run stored")
	return res, nil
}

// copyClaims streams claim rows to COPY through a channel.
func copyClaims(ctx context.Context, tx pgx.Tx, runID uuid.UUID, records []model.Record) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan indexed, 256)
	go func() {
		defer close(ch)
		for i := range records {
			select {
			case ch <- indexed{seq: i, rec: &records[i]}:
			case <-ctx.Done():
				return
			}
		}
	}()

	src := db.NewChannelSource(ch, func(row indexed) []any {
		return claimValues(runID, row.seq, &row.rec.Claim)
	})
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"synth", "claims"}, claimColumns, src)
	if err != nil {
		return n, fmt.Errorf("copy claims: %w", err)
	}
	return n, nil
}

func claimValues(runID uuid.UUID, seq int, c *model.Claim) []any {
	var rendering *string
	if c.RenderingProvider != nil {
		npi := c.RenderingProvider.NPI
		rendering = &npi
	}
	p := &c.Patient
	return []any{
		runID, seq, c.ClaimID, string(c.Status),
		p.ID, p.FirstName, p.LastName, p.DateOfBirth,
		p.Gender, p.Address.City, p.Address.State, p.Address.ZipCode,
		c.BillingProvider.NPI, c.BillingProvider.Name, rendering,
		c.TotalCharge, c.TotalPayment, c.TotalAdjustment, c.PatientResponsibility,
	}
}

// Counts are the stored row counts of a run.
type Counts struct {
	Claims       int64
	ServiceLines int64
	Anomalies    int64
}

// LoadCounts returns the stored row counts for a run.
func LoadCounts(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID) (Counts, error) {
	var c Counts
	if err := pool.QueryRow(ctx, embedsql.RunCounts, runID).Scan(&c.Claims, &c.ServiceLines, &c.Anomalies); err != nil {
		return Counts{}, fmt.Errorf("query run counts: %w", err)
	}
	return c, nil
}

// AnomaliesByType returns the stored anomaly counts per type for a run.
func AnomaliesByType(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID) (map[model.AnomalyType]int, error) {
	rows, err := pool.Query(ctx, embedsql.AnomaliesByType, runID)
	if err != nil {
		return nil, fmt.Errorf("query anomalies by type: %w", err)
	}
	defer rows.Close()

	out := make(map[model.AnomalyType]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan anomaly count: %w", err)
		}
		out[model.AnomalyType(name)] = n
	}
	return out, rows.Err()
}

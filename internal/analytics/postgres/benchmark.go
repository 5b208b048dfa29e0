package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/research-analytics/internal/core/datamodel/benchmark"
)

const benchmarkColumns = `id, institution_type, metric, percentile25, percentile50, percentile75,
	sample_size, period_start, period_end`

// BenchmarkRepository reads the sector reference data with plain SQL.
type BenchmarkRepository struct {
	db *sqlx.DB
}

func NewBenchmarkRepository(db *sqlx.DB) *BenchmarkRepository {
	return &BenchmarkRepository{db: db}
}

// ByInstitutionType returns the most recent period first.
func (r *BenchmarkRepository) ByInstitutionType(ctx context.Context, institutionType string) ([]benchmark.SectorBenchmark, error) {
	query := r.db.Rebind(`SELECT ` + benchmarkColumns + `
		FROM sector_benchmarks
		WHERE institution_type = ?
		ORDER BY period_start DESC, metric ASC`)

	rows := []benchmark.SectorBenchmark{}
	if err := r.db.SelectContext(ctx, &rows, query, institutionType); err != nil {
		return nil, fmt.Errorf("select benchmarks: %w", err)
	}
	return rows, nil
}

// Upsert replaces the benchmark with the same id. Used by the seeder.
func (r *BenchmarkRepository) Upsert(ctx context.Context, b benchmark.SectorBenchmark) error {
	query := `INSERT INTO sector_benchmarks (` + benchmarkColumns + `)
		VALUES (:id, :institution_type, :metric, :percentile25, :percentile50, :percentile75,
			:sample_size, :period_start, :period_end)
		ON CONFLICT (id) DO UPDATE SET
			percentile25 = excluded.percentile25,
			percentile50 = excluded.percentile50,
			percentile75 = excluded.percentile75,
			sample_size = excluded.sample_size`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("upsert benchmark %s: %w", b.ID, err)
	}
	return nil
}

package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/alpost/backend/internal/forum"
)

// Drift is a votable entity whose stored points disagree with its ledger.
type Drift struct {
	ID        int64
	Points    int
	LedgerSum int
}

// FindDrift lists every entity of kind whose points differ from the sum of
// its ledger values.
func (s *Store) FindDrift(ctx context.Context, kind forum.Kind) ([]Drift, error) {
	t := ledgerTables(kind)
	sql := fmt.Sprintf(`
		SELECT e.id, e.points, COALESCE(SUM(l.value), 0) AS ledger_sum
		FROM %[1]s e
		LEFT JOIN %[2]s l ON l.%[3]s = e.id
		GROUP BY e.id, e.points
		HAVING e.points <> COALESCE(SUM(l.value), 0)
		ORDER BY e.id`, t.entity, t.ledger, t.target)

	var drift []Drift
	if err := s.db.WithContext(ctx).Raw(sql).Scan(&drift).Error; err != nil {
		return nil, fmt.Errorf("failed to scan %s points: %w", kind, err)
	}
	return drift, nil
}

// FixDrift rewrites points from the ledger for every drifting entity of kind
// in one transaction and returns the number of rows changed.
func (s *Store) FixDrift(ctx context.Context, kind forum.Kind) (int64, error) {
	t := ledgerTables(kind)
	sql := fmt.Sprintf(`
		UPDATE %[1]s e
		SET points = sums.total
		FROM (
			SELECT e2.id, COALESCE(SUM(l.value), 0) AS total
			FROM %[1]s e2
			LEFT JOIN %[2]s l ON l.%[3]s = e2.id
			GROUP BY e2.id
		) sums
		WHERE sums.id = e.id AND e.points <> sums.total`, t.entity, t.ledger, t.target)

	var fixed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Votes arriving mid-rewrite would race the sums.
		if err := tx.Exec(fmt.Sprintf("LOCK TABLE %s, %s IN SHARE ROW EXCLUSIVE MODE", t.entity, t.ledger)).Error; err != nil {
			return err
		}
		res := tx.Exec(sql)
		fixed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fix %s points: %w", kind, err)
	}
	return fixed, nil
}

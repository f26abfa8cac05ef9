package repos

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pricewatch/internal/domain"
)

type PriceRepo struct{ db *sqlx.DB }

func NewPriceRepo(db *sqlx.DB) *PriceRepo { return &PriceRepo{db: db} }

func (r *PriceRepo) Append(productID string, price int, at time.Time) error {
	_, err := r.db.Exec(`
	  INSERT INTO price_history(product_id, price, recorded_at) VALUES(?,?,?)`,
		productID, price, at.UTC().Format(time.RFC3339))
	return err
}

type observationRow struct {
	ProductID  string `db:"product_id"`
	Price      int    `db:"price"`
	RecordedAt string `db:"recorded_at"`
}

// History returns the chronologically ordered series for one product.
// days <= 0 means the full series.
func (r *PriceRepo) History(productID string, days int) ([]domain.PriceObservation, error) {
	query := `SELECT product_id, price, recorded_at FROM price_history WHERE product_id = ?`
	args := []any{productID}
	if days > 0 {
		query += ` AND recorded_at >= ?`
		args = append(args, time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339))
	}
	query += ` ORDER BY recorded_at ASC, id ASC`

	var rows []observationRow
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]domain.PriceObservation, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339, row.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("bad recorded_at %q: %w", row.RecordedAt, err)
		}
		out = append(out, domain.PriceObservation{ProductID: row.ProductID, Price: row.Price, RecordedAt: ts})
	}
	return out, nil
}

// Summary powers the dashboard.
type Summary struct {
	TempCount      int `db:"temp_count" json:"temp_count"`
	ActivatedCount int `db:"activated_count" json:"activated_count"`
	TrackedUsers   int `db:"tracked_users" json:"tracked_users"`
	Observations   int `db:"observations" json:"observations"`
}

func (r *PriceRepo) Summary() (Summary, error) {
	var s Summary
	err := r.db.Get(&s, `
	  SELECT
	    (SELECT COUNT(*) FROM watch_entries WHERE state = 'TEMP')      AS temp_count,
	    (SELECT COUNT(*) FROM watch_entries WHERE state = 'ACTIVATED') AS activated_count,
	    (SELECT COUNT(DISTINCT user_email) FROM watch_entries
	       WHERE state = 'ACTIVATED')                                  AS tracked_users,
	    (SELECT COUNT(*) FROM price_history)                           AS observations`)
	return s, err
}

type RecentChange struct {
	ProductName string `db:"product_name" json:"product_name"`
	Price       int    `db:"price" json:"price"`
	RecordedAt  string `db:"recorded_at" json:"recorded_at"`
}

func (r *PriceRepo) RecentChanges(limit int) ([]RecentChange, error) {
	var out []RecentChange
	err := r.db.Select(&out, `
	  SELECT e.product_name, h.price, h.recorded_at
	  FROM price_history h
	  JOIN watch_entries e ON e.id = h.product_id
	  ORDER BY h.recorded_at DESC, h.id DESC
	  LIMIT ?`, limit)
	return out, err
}

package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"pricewatch/internal/domain"
)

const entryColumns = `
  id, product_name, product_url, COALESCE(image_url,'') AS image_url, source,
  current_price, COALESCE(target_price,0) AS target_price, user_email, state, created_at`

type WatchlistRepo struct{ db *sqlx.DB }

func NewWatchlistRepo(db *sqlx.DB) *WatchlistRepo { return &WatchlistRepo{db: db} }

// UpsertTemp stages an entry. A product already staged under the same
// URL gets its price refreshed instead of a duplicate row.
func (r *WatchlistRepo) UpsertTemp(entry domain.WatchlistEntry) (domain.WatchlistEntry, error) {
	var existingID string
	err := r.db.Get(&existingID,
		`SELECT id FROM watch_entries WHERE product_url = ? AND state = ?`,
		entry.ProductURL, domain.StateTemp)
	if err == nil {
		_, err = r.db.Exec(
			`UPDATE watch_entries SET current_price = ?, image_url = ? WHERE id = ?`,
			entry.CurrentPrice, entry.ImageURL, existingID)
		if err != nil {
			return domain.WatchlistEntry{}, err
		}
		return r.Get(existingID)
	}
	if err != sql.ErrNoRows {
		return domain.WatchlistEntry{}, err
	}

	_, err = r.db.Exec(`
	  INSERT INTO watch_entries(id, product_name, product_url, image_url, source,
	    current_price, target_price, user_email, state, created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?)`,
		entry.ID, entry.ProductName, entry.ProductURL, entry.ImageURL, entry.Source,
		entry.CurrentPrice, entry.TargetPrice, entry.UserEmail, entry.State, entry.CreatedAt)
	if err != nil {
		return domain.WatchlistEntry{}, err
	}
	return entry, nil
}

func (r *WatchlistRepo) Get(id string) (domain.WatchlistEntry, error) {
	var e domain.WatchlistEntry
	err := r.db.Get(&e, `SELECT `+entryColumns+` FROM watch_entries WHERE id = ?`, id)
	return e, err
}

func (r *WatchlistRepo) ListTemp() ([]domain.WatchlistEntry, error) {
	var out []domain.WatchlistEntry
	err := r.db.Select(&out, `
	  SELECT `+entryColumns+` FROM watch_entries
	  WHERE state = ? ORDER BY created_at DESC`, domain.StateTemp)
	return out, err
}

func (r *WatchlistRepo) ListActivated(email string) ([]domain.WatchlistEntry, error) {
	var out []domain.WatchlistEntry
	err := r.db.Select(&out, `
	  SELECT `+entryColumns+` FROM watch_entries
	  WHERE state = ? AND user_email = ? ORDER BY created_at DESC`,
		domain.StateActivated, email)
	return out, err
}

func (r *WatchlistRepo) ListAllActivated() ([]domain.WatchlistEntry, error) {
	var out []domain.WatchlistEntry
	err := r.db.Select(&out, `
	  SELECT `+entryColumns+` FROM watch_entries
	  WHERE state = ? ORDER BY created_at`, domain.StateActivated)
	return out, err
}

func (r *WatchlistRepo) CountActivated(email string) (int, error) {
	var n int
	err := r.db.Get(&n,
		`SELECT COUNT(*) FROM watch_entries WHERE state = ? AND user_email = ?`,
		domain.StateActivated, email)
	return n, err
}

// Activate rebinds a TEMP entry to email. The state guard in the WHERE
// clause makes concurrent activation idempotent: only one caller
// observes the row flip.
func (r *WatchlistRepo) Activate(id, email string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE watch_entries SET user_email = ?, state = ?
	  WHERE id = ? AND state = ?`,
		email, domain.StateActivated, id, domain.StateTemp)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *WatchlistRepo) UpdatePrice(id string, price int) error {
	_, err := r.db.Exec(`UPDATE watch_entries SET current_price = ? WHERE id = ?`, price, id)
	return err
}

func (r *WatchlistRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM watch_entries WHERE id = ?`, id)
	return err
}

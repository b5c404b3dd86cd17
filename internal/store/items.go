package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// ErrNotFound is returned when a record with the requested ID does not exist.
var ErrNotFound = errors.New("not found")

// itemColumns is the column list matching scanItem.
const itemColumns = `id, title, description, category, location, date_reported, contact_info, image, status`

// updatableItemFields lists the columns UpdateItemField may touch.
var updatableItemFields = map[string]bool{
	"status":       true,
	"image":        true,
	"contact_info": true,
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var contactInfo, image sql.NullString
	if err := row.Scan(&item.ID, &item.Title, &item.Description, &item.Category, &item.Location,
		&item.DateReported, &contactInfo, &image, &item.Status); err != nil {
		return nil, err
	}
	item.ContactInfo = contactInfo.String
	item.Image = image.String
	return item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateItem inserts a new item. Empty category and status fall back to the
// column defaults and a zero DateReported is set to the current time.
func CreateItem(ctx context.Context, db *sql.DB, in model.Item) (*model.Item, error) {
	if in.Category == "" {
		in.Category = model.CategoryFound
	}
	if in.Status == "" {
		in.Status = model.StatusPending
	}
	if in.DateReported.IsZero() {
		in.DateReported = time.Now()
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (title, description, category, location, date_reported, contact_info, image, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, in.Description, in.Category, in.Location, in.DateReported.UTC(),
		nullString(in.ContactInfo), nullString(in.Image), in.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items newest first, optionally filtered by category.
// Items reported at the same instant keep insertion order.
func ListItems(ctx context.Context, db *sql.DB, filter model.ItemFilter) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if filter.Category != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items WHERE category = ?
			 ORDER BY date_reported DESC, id ASC`, filter.Category,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items ORDER BY date_reported DESC, id ASC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem overwrites the editable fields of an item. An empty Status or
// Image keeps the stored value and the report date is never changed. It
// returns the updated item and the image reference that was replaced, if any.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, in model.Item) (*model.Item, string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("beginning item update: %w", err)
	}
	defer tx.Rollback()

	var previous sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT image FROM items WHERE id = ?`, id).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading item image: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, category = ?, location = ?, contact_info = ?,
		        image = COALESCE(?, image),
		        status = COALESCE(NULLIF(?, ''), status)
		 WHERE id = ?`,
		in.Title, in.Description, in.Category, in.Location, nullString(in.ContactInfo),
		nullString(in.Image), in.Status, id,
	); err != nil {
		return nil, "", fmt.Errorf("updating item: %w", err)
	}

	item, err := scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		return nil, "", fmt.Errorf("reading updated item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("committing item update: %w", err)
	}

	replaced := ""
	if in.Image != "" && previous.String != in.Image {
		replaced = previous.String
	}
	return item, replaced, nil
}

// UpdateItemField sets a single column of an item without rewriting the rest
// and returns the value it replaced. NULL is returned as "".
func UpdateItemField(ctx context.Context, db *sql.DB, id int64, field string, value any) (string, error) {
	if !updatableItemFields[field] {
		return "", fmt.Errorf("updating item: field %q is not updatable", field)
	}
	if s, ok := value.(string); ok && field != "status" {
		value = nullString(s)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning item %s update: %w", field, err)
	}
	defer tx.Rollback()

	// field is checked against a fixed whitelist above.
	var previous sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT `+field+` FROM items WHERE id = ?`, id).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading item %s: %w", field, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE items SET `+field+` = ? WHERE id = ?`, value, id); err != nil {
		return "", fmt.Errorf("updating item %s: %w", field, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing item %s update: %w", field, err)
	}
	return previous.String, nil
}

// ToggleItemStatus flips an item between Pending and Claimed in a single
// statement and returns the new status.
func ToggleItemStatus(ctx context.Context, db *sql.DB, id int64) (string, error) {
	var status string
	err := db.QueryRowContext(ctx,
		`UPDATE items
		 SET status = CASE status WHEN ? THEN ? ELSE ? END
		 WHERE id = ?
		 RETURNING status`,
		model.StatusPending, model.StatusClaimed, model.StatusPending, id,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("toggling item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("toggling item status: %w", err)
	}
	return status, nil
}

// DeleteItem permanently removes an item and returns it as it was, so the
// caller can clean up its image.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`DELETE FROM items WHERE id = ? RETURNING `+itemColumns, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deleting item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("deleting item: %w", err)
	}
	return item, nil
}

// ItemCounts holds the number of items per category and status.
type ItemCounts map[string]map[string]int

// Total returns the number of items across all categories and statuses.
func (c ItemCounts) Total() int {
	n := 0
	for _, byStatus := range c {
		for _, v := range byStatus {
			n += v
		}
	}
	return n
}

// CountItems groups item counts by category and status.
func CountItems(ctx context.Context, db *sql.DB) (ItemCounts, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT category, status, COUNT(*) FROM items GROUP BY category, status`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	defer rows.Close()

	counts := ItemCounts{
		model.CategoryLost:  {},
		model.CategoryFound: {},
	}
	for rows.Next() {
		var category, status string
		var n int
		if err := rows.Scan(&category, &status, &n); err != nil {
			return nil, fmt.Errorf("scanning item count: %w", err)
		}
		if counts[category] == nil {
			counts[category] = map[string]int{}
		}
		counts[category][status] = n
	}
	return counts, rows.Err()
}

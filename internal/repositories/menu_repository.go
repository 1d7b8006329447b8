package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/database"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

// MenuRepositoryInterface is the read-only catalog view the order core
// depends on. Catalog content management lives outside the core.
type MenuRepositoryInterface interface {
	List(ctx context.Context) ([]*models.MenuItem, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.MenuItem, error)
	Count(ctx context.Context) (int, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
}

type MenuRepository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewMenuRepository(log *logger.Logger, db *database.DB) *MenuRepository {
	return &MenuRepository{
		db:     db,
		logger: log.WithComponent("menu_repository"),
	}
}

const menuColumns = "id, name, description, category, price, sort_order, image_path"

func scanMenuItem(row interface{ Scan(...any) error }) (*models.MenuItem, error) {
	var item models.MenuItem
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Category,
		&item.Price, &item.SortOrder, &item.ImagePath,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns the full catalog in display order.
func (r *MenuRepository) List(ctx context.Context) ([]*models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+menuColumns+" FROM menu_items ORDER BY sort_order, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	var items []*models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByIDs resolves a set of item ids in one query. Ids missing from the
// catalog are simply absent from the result map; callers decide whether that
// is an error.
func (r *MenuRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.MenuItem, error) {
	items := make(map[int64]*models.MenuItem, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve menu items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items[item.ID] = item
	}
	return items, rows.Err()
}

// Count returns the catalog size.
func (r *MenuRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return count, nil
}

// CategoryCounts groups catalog items by category, largest first.
func (r *MenuRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS count
		FROM menu_items
		GROUP BY category
		ORDER BY count DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("failed to group menu categories: %w", err)
	}
	defer rows.Close()

	var counts []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

var _ MenuRepositoryInterface = (*MenuRepository)(nil)

package database

import (
	"context"
	"database/sql"
	"fmt"
)

type seedMenuItem struct {
	name        string
	description string
	category    string
	price       float64
	sortOrder   int
}

// launchMenu is the opening catalog, inserted only when menu_items is empty.
var launchMenu = []seedMenuItem{
	{"2 PC CHICKEN + 2 LITTI", "Litti combo with chicken.", "Combo", 279, 1},
	{"4 PC CHICKEN + 4 LITTI", "Family combo with chicken.", "Combo", 429, 2},
	{"2 PC CHICKEN LEG + 2 LITTI", "Litti combo with chicken leg.", "Combo", 149, 3},
	{"4 PC CHICKEN LEG + 4 LITTI", "Family combo with chicken leg.", "Combo", 299, 4},
	{"2 PC LITTI + CHOKHA", "Classic litti with chokha.", "Classic", 90, 5},
	{"4 PC LITTI + CHOKHA", "Classic litti with chokha.", "Classic", 169, 6},
	{"HALF PLATE (4 PC) CHICKEN", "Chicken plate.", "Plate", 89, 7},
	{"FULL PLATE (8 PC) CHICKEN", "Chicken plate.", "Plate", 169, 8},
	{"CHICKEN THALI", "Thali meal.", "Thali", 119, 9},
	{"CHICKEN SATTU PARATHA THALI", "Thali meal with sattu paratha.", "Thali", 109, 10},
	{"HANDI CHICKEN THALI", "Thali meal.", "Thali", 129, 11},
	{"HANDI CHICKEN SATTU PARATHA THALI", "Thali meal with sattu paratha.", "Thali", 119, 12},
}

// SeedMenu inserts the launch catalog when the menu is empty. It never
// overwrites operator-managed catalog rows.
func SeedMenu(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count); err != nil {
		return fmt.Errorf("failed to count menu items: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, item := range launchMenu {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO menu_items (name, description, category, price, sort_order)
			VALUES (?, ?, ?, ?, ?)`,
			item.name, item.description, item.category, item.price, item.sortOrder,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to seed menu item %q: %w", item.name, err)
		}
	}
	return tx.Commit()
}

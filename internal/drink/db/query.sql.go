package db

import (
	"context"
)

const createDrink = `-- name: CreateDrink :one
INSERT INTO drinks (title, recipe)
VALUES (?, ?)
RETURNING id, title, recipe
`

type CreateDrinkParams struct {
	Title  string
	Recipe string
}

func (q *Queries) CreateDrink(ctx context.Context, arg CreateDrinkParams) (Drink, error) {
	row := q.db.QueryRowContext(ctx, createDrink, arg.Title, arg.Recipe)
	var i Drink
	err := row.Scan(&i.ID, &i.Title, &i.Recipe)
	return i, err
}

const deleteAllDrinks = `-- name: DeleteAllDrinks :exec
DELETE FROM drinks
`

func (q *Queries) DeleteAllDrinks(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllDrinks)
	return err
}

const deleteDrink = `-- name: DeleteDrink :execrows
DELETE FROM drinks
WHERE id = ?
`

func (q *Queries) DeleteDrink(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteDrink, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getDrink = `-- name: GetDrink :one
SELECT id, title, recipe
FROM drinks
WHERE id = ?
`

func (q *Queries) GetDrink(ctx context.Context, id int64) (Drink, error) {
	row := q.db.QueryRowContext(ctx, getDrink, id)
	var i Drink
	err := row.Scan(&i.ID, &i.Title, &i.Recipe)
	return i, err
}

const listDrinks = `-- name: ListDrinks :many
SELECT id, title, recipe
FROM drinks
ORDER BY id
`

func (q *Queries) ListDrinks(ctx context.Context) ([]Drink, error) {
	rows, err := q.db.QueryContext(ctx, listDrinks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Drink
	for rows.Next() {
		var i Drink
		if err := rows.Scan(&i.ID, &i.Title, &i.Recipe); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateDrink = `-- name: UpdateDrink :one
UPDATE drinks
SET title = ?, recipe = ?
WHERE id = ?
RETURNING id, title, recipe
`

type UpdateDrinkParams struct {
	Title  string
	Recipe string
	ID     int64
}

func (q *Queries) UpdateDrink(ctx context.Context, arg UpdateDrinkParams) (Drink, error) {
	row := q.db.QueryRowContext(ctx, updateDrink, arg.Title, arg.Recipe, arg.ID)
	var i Drink
	err := row.Scan(&i.ID, &i.Title, &i.Recipe)
	return i, err
}

package drink

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"

	drinkdb "github.com/nao1215/coffeeshop/internal/drink/db"
	"github.com/nao1215/coffeeshop/pkg/migration"
)

//go:embed migrations
var migrationsFS embed.FS

// seedDrink はDB初期化時に投入するドリンク。
var seedDrink = drinkdb.CreateDrinkParams{
	Title:  "water",
	Recipe: `[{"name":"water","color":"blue","parts":1}]`,
}

// initSchema はマイグレーションを実行してdrinksテーブルのスキーマを適用する。
func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		return err
	}
	return nil
}

// resetDrinks は全ドリンクを削除し、初期データのみの状態にする。
func resetDrinks(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	q := drinkdb.New(tx)
	if err := q.DeleteAllDrinks(ctx); err != nil {
		return fmt.Errorf("ドリンクの全削除に失敗: %w", err)
	}
	if _, err := q.CreateDrink(ctx, seedDrink); err != nil {
		return fmt.Errorf("初期データの投入に失敗: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	log.Printf("ドリンクを初期化しました: %s", seedDrink.Title)
	return nil
}

package drink

import (
	"database/sql"
	"testing"

	drinkdb "github.com/nao1215/coffeeshop/internal/drink/db"
	_ "modernc.org/sqlite"
)

// setupTestDB はスキーマ適用済みのインメモリSQLiteを返す。
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := initSchema(t.Context(), sqlDB); err != nil {
		t.Fatalf("スキーマ初期化に失敗: %v", err)
	}
	return sqlDB
}

func TestInitSchema(t *testing.T) {
	t.Parallel()

	sqlDB := setupTestDB(t)

	t.Run("2回目の適用は何もしない", func(t *testing.T) {
		if err := initSchema(t.Context(), sqlDB); err != nil {
			t.Fatalf("initSchema()でエラーが発生: %v", err)
		}
	})

	t.Run("DBでもtitleの長さを制約する", func(t *testing.T) {
		q := drinkdb.New(sqlDB)
		_, err := q.CreateDrink(t.Context(), drinkdb.CreateDrinkParams{Title: "", Recipe: "[]"})
		if err == nil {
			t.Error("空のtitleが保存された")
		}
	})
}

func TestResetDrinks(t *testing.T) {
	t.Parallel()

	sqlDB := setupTestDB(t)
	q := drinkdb.New(sqlDB)
	for _, title := range []string{"latte", "mocha"} {
		if _, err := q.CreateDrink(t.Context(), drinkdb.CreateDrinkParams{Title: title, Recipe: "[]"}); err != nil {
			t.Fatalf("テスト用ドリンクの作成に失敗: %v", err)
		}
	}

	if err := resetDrinks(t.Context(), sqlDB); err != nil {
		t.Fatalf("resetDrinks()でエラーが発生: %v", err)
	}
	// 繰り返し実行しても初期データは1件のまま
	if err := resetDrinks(t.Context(), sqlDB); err != nil {
		t.Fatalf("2回目のresetDrinks()でエラーが発生: %v", err)
	}

	drinks, err := q.ListDrinks(t.Context())
	if err != nil {
		t.Fatalf("ListDrinks()でエラーが発生: %v", err)
	}
	if len(drinks) != 1 {
		t.Fatalf("件数 = %d, want 1", len(drinks))
	}
	if drinks[0].Title != seedDrink.Title || drinks[0].Recipe != seedDrink.Recipe {
		t.Errorf("初期データ = %+v, want %+v", drinks[0], seedDrink)
	}
}

package drink

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	drinkdb "github.com/nao1215/coffeeshop/internal/drink/db"
)

// Ingredient はレシピを構成する1つの材料。
type Ingredient struct {
	// Name は材料名。短縮表示では返さない。
	Name string `json:"name"`
	// Color は表示用の色。
	Color string `json:"color"`
	// Parts は材料の相対的な分量。正の数である必要がある。
	Parts float64 `json:"parts"`
}

// Recipe は材料の並び。順序はそのまま保存・返却する。
type Recipe []Ingredient

// UnmarshalJSON は材料の配列に加え、材料1つだけのオブジェクトも受け付ける。
// オブジェクトの場合は要素1つの配列として扱う。
func (r *Recipe) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single Ingredient
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*r = Recipe{single}
		return nil
	}

	var list []Ingredient
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}
	*r = list
	return nil
}

// validate は全ての材料の分量が正であることを確認する。
func (r Recipe) validate() error {
	for i, ing := range r {
		if ing.Parts <= 0 {
			return fmt.Errorf("recipe[%d]: partsは正の数である必要があります: %v", i, ing.Parts)
		}
	}
	return nil
}

// encode はレシピをDBに保存するJSON文字列に変換する。nilは空配列として保存する。
func (r Recipe) encode() (string, error) {
	if r == nil {
		r = Recipe{}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("レシピのシリアライズに失敗: %w", err)
	}
	return string(b), nil
}

// errInvalidRecipe はDBに保存されたレシピが不正なJSONであることを表す。
var errInvalidRecipe = errors.New("保存されたレシピが不正です")

// decodeRecipe はDBに保存されたJSON文字列をレシピに戻す。
func decodeRecipe(s string) (Recipe, error) {
	var r Recipe
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidRecipe, err)
	}
	if r == nil {
		r = Recipe{}
	}
	return r, nil
}

// shortIngredient は短縮表示の材料。材料名を含まない。
type shortIngredient struct {
	Color string  `json:"color"`
	Parts float64 `json:"parts"`
}

// shortDrink はドリンクの短縮表示。公開一覧で使用する。
type shortDrink struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Recipe []shortIngredient `json:"recipe"`
}

// longDrink はドリンクの詳細表示。
type longDrink struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Recipe Recipe `json:"recipe"`
}

// toShort はDB行を短縮表示に変換する。
func toShort(d drinkdb.Drink) (shortDrink, error) {
	recipe, err := decodeRecipe(d.Recipe)
	if err != nil {
		return shortDrink{}, fmt.Errorf("drink id=%d: %w", d.ID, err)
	}

	short := make([]shortIngredient, 0, len(recipe))
	for _, ing := range recipe {
		short = append(short, shortIngredient{Color: ing.Color, Parts: ing.Parts})
	}
	return shortDrink{ID: d.ID, Title: d.Title, Recipe: short}, nil
}

// toLong はDB行を詳細表示に変換する。
func toLong(d drinkdb.Drink) (longDrink, error) {
	recipe, err := decodeRecipe(d.Recipe)
	if err != nil {
		return longDrink{}, fmt.Errorf("drink id=%d: %w", d.ID, err)
	}
	return longDrink{ID: d.ID, Title: d.Title, Recipe: recipe}, nil
}

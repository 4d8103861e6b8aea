package drink

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// maxTitleLength はドリンク名の最大文字数。
const maxTitleLength = 80

// errTitleMissing はリクエストにtitleが含まれていないことを表す。
var errTitleMissing = errors.New("titleは必須です")

// drinkRequest はドリンク作成・更新リクエストのJSON構造。
// 未指定とゼロ値を区別するため各フィールドはポインタで受け取る。
// ボディにidが含まれていても無視する。
type drinkRequest struct {
	// Title はドリンク名。
	Title *string `json:"title"`
	// Recipe は材料一覧。材料1つのオブジェクトも受け付ける。
	Recipe *Recipe `json:"recipe"`
}

// validate はリクエストを一度に検証する。
// titleが無い場合はerrTitleMissingを返し、呼び出し側でステータスを決められるようにする。
func (r drinkRequest) validate() error {
	if r.Title == nil {
		return errTitleMissing
	}

	n := utf8.RuneCountInString(*r.Title)
	if n == 0 || n > maxTitleLength {
		return fmt.Errorf("titleは1〜%d文字である必要があります: %d文字", maxTitleLength, n)
	}

	if r.Recipe != nil {
		if err := r.Recipe.validate(); err != nil {
			return err
		}
	}
	return nil
}

// recipeOr はリクエストのレシピを返す。未指定の場合はfallbackを返す。
func (r drinkRequest) recipeOr(fallback Recipe) Recipe {
	if r.Recipe == nil {
		return fallback
	}
	return *r.Recipe
}

package drink

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	drinkdb "github.com/nao1215/coffeeshop/internal/drink/db"
)

func TestRecipeUnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Recipe
		wantErr bool
	}{
		{
			name:  "配列を受け付ける",
			input: `[{"name":"milk","color":"white","parts":2},{"name":"coffee","color":"brown","parts":1}]`,
			want:  Recipe{{Name: "milk", Color: "white", Parts: 2}, {Name: "coffee", Color: "brown", Parts: 1}},
		},
		{
			name:  "オブジェクト1つは要素1つの配列になる",
			input: ` {"name":"water","color":"blue","parts":1}`,
			want:  Recipe{{Name: "water", Color: "blue", Parts: 1}},
		},
		{
			name:  "空配列",
			input: `[]`,
			want:  Recipe{},
		},
		{
			name:    "文字列は受け付けない",
			input:   `"milk"`,
			wantErr: true,
		},
		{
			name:    "partsの型が不正",
			input:   `{"name":"milk","color":"white","parts":"two"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got Recipe
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRecipeValidate(t *testing.T) {
	t.Parallel()

	if err := (Recipe{{Name: "milk", Color: "white", Parts: 0.5}}).validate(); err != nil {
		t.Errorf("正の分量でエラー: %v", err)
	}
	if err := (Recipe{}).validate(); err != nil {
		t.Errorf("空のレシピでエラー: %v", err)
	}
	if err := (Recipe{{Name: "milk", Color: "white", Parts: 1}, {Name: "ice", Color: "clear", Parts: 0}}).validate(); err == nil {
		t.Error("分量0でエラーにならない")
	}
}

func TestRecipeEncode(t *testing.T) {
	t.Parallel()

	t.Run("nilは空配列として保存する", func(t *testing.T) {
		t.Parallel()
		got, err := Recipe(nil).encode()
		if err != nil {
			t.Fatalf("encode() error = %v", err)
		}
		if got != "[]" {
			t.Errorf("encode() = %s, want []", got)
		}
	})

	t.Run("エンコードしてデコードすると元に戻る", func(t *testing.T) {
		t.Parallel()
		in := Recipe{{Name: "espresso", Color: "brown", Parts: 1}, {Name: "milk", Color: "white", Parts: 2.5}}
		encoded, err := in.encode()
		if err != nil {
			t.Fatalf("encode() error = %v", err)
		}
		got, err := decodeRecipe(encoded)
		if err != nil {
			t.Fatalf("decodeRecipe() error = %v", err)
		}
		if len(got) != len(in) || got[0] != in[0] || got[1] != in[1] {
			t.Errorf("decodeRecipe() = %+v, want %+v", got, in)
		}
	})
}

func TestDecodeRecipe(t *testing.T) {
	t.Parallel()

	t.Run("nullは空のレシピになる", func(t *testing.T) {
		t.Parallel()
		got, err := decodeRecipe("null")
		if err != nil {
			t.Fatalf("decodeRecipe() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("decodeRecipe() = %#v, want 空のRecipe", got)
		}
	})

	t.Run("不正なJSONはerrInvalidRecipeを返す", func(t *testing.T) {
		t.Parallel()
		_, err := decodeRecipe("{broken")
		if !errors.Is(err, errInvalidRecipe) {
			t.Errorf("decodeRecipe() error = %v, want errInvalidRecipe", err)
		}
	})
}

func TestToShortAndToLong(t *testing.T) {
	t.Parallel()

	row := drinkdb.Drink{
		ID:     7,
		Title:  "matcha shake",
		Recipe: `[{"name":"milk","color":"grey","parts":1},{"name":"matcha","color":"green","parts":3}]`,
	}

	short, err := toShort(row)
	if err != nil {
		t.Fatalf("toShort() error = %v", err)
	}
	b, _ := json.Marshal(short)
	if strings.Contains(string(b), "name") {
		t.Errorf("短縮表示に材料名が含まれている: %s", b)
	}
	want := `{"id":7,"title":"matcha shake","recipe":[{"color":"grey","parts":1},{"color":"green","parts":3}]}`
	if string(b) != want {
		t.Errorf("toShort() = %s, want %s", b, want)
	}

	long, err := toLong(row)
	if err != nil {
		t.Fatalf("toLong() error = %v", err)
	}
	b, _ = json.Marshal(long)
	want = `{"id":7,"title":"matcha shake","recipe":[{"name":"milk","color":"grey","parts":1},{"name":"matcha","color":"green","parts":3}]}`
	if string(b) != want {
		t.Errorf("toLong() = %s, want %s", b, want)
	}

	row.Recipe = "not json"
	if _, err := toShort(row); !errors.Is(err, errInvalidRecipe) {
		t.Errorf("toShort() error = %v, want errInvalidRecipe", err)
	}
	if _, err := toLong(row); !errors.Is(err, errInvalidRecipe) {
		t.Errorf("toLong() error = %v, want errInvalidRecipe", err)
	}
}

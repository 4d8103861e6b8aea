// コーヒーショップのドリンクAPIのエントリポイント。
// ドリンクメニューのCRUDを提供し、変更系の操作はアクセストークンの権限で保護する。
package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/nao1215/coffeeshop/internal/drink"
)

func main() {
	// .envが無い場合は環境変数のみを使う
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf(".envの読み込みに失敗: %v", err)
		}
		log.Printf(".envが無いため環境変数のみを使用します")
	}

	cfg := drink.LoadConfig()

	server, err := drink.NewServer(cfg)
	if err != nil {
		log.Fatalf("ドリンクサーバーの初期化に失敗: %v", err)
	}
	log.Printf("ドリンクAPIを起動します: :%s (issuer=%s, jwks=%s)", cfg.Port, cfg.Issuer(), cfg.JWKSURL())
	if err := server.Run(); err != nil {
		_ = server.Shutdown()
		log.Fatalf("ドリンクAPIの起動に失敗: %v", err)
	}
}

package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/nao1215/coffeeshop/pkg/httpclient"
)

// DefaultPath はIDプロバイダがJWKSを公開している標準パス。
const DefaultPath = "/.well-known/jwks.json"

// DefaultMinRefreshInterval は再取得の最小間隔。取得に失敗した場合もこの間隔は再取得しない。
const DefaultMinRefreshInterval = time.Minute

// ErrKeyNotFound は指定されたkidの鍵が鍵セットに存在しないことを表す。
var ErrKeyNotFound = errors.New("署名鍵が見つかりません")

// document はJWKSドキュメントのJSON構造。
// 1つの鍵が壊れていても他の鍵を使えるよう、鍵は個別にパースする。
type document struct {
	Keys []json.RawMessage `json:"keys"`
}

// KeySet はkidをキーとしてRSA公開鍵を保持するキャッシュ。
// 複数のリクエストから並行して利用できる。
type KeySet struct {
	// client はJWKSを取得するHTTPクライアント。
	client *httpclient.Client
	// path はJWKSドキュメントのパス。
	path string
	// MinRefreshInterval は再取得の最小間隔。ゼロの場合は毎回再取得を許可する。
	MinRefreshInterval time.Duration

	// refreshMu は同時に複数の取得が走らないようにする。
	refreshMu sync.Mutex
	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	// lastAttempt は成否にかかわらず最後に取得を試みた時刻。
	lastAttempt time.Time
	// lastErr は最後の取得で発生したエラー。成功した場合はnil。
	lastErr error
}

// New は新しいKeySetを生成する。鍵はKeyの初回呼び出し時に取得する。
func New(client *httpclient.Client, path string) *KeySet {
	return &KeySet{
		client:             client,
		path:               path,
		MinRefreshInterval: DefaultMinRefreshInterval,
	}
}

// Key はkidに対応するRSA公開鍵を返す。
// キャッシュに無い場合は再取得を試み、それでも無ければErrKeyNotFoundを返す。
// 直前の取得が失敗していて最小間隔内の場合は、再取得せずにそのエラーを返す。
func (k *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok := k.lookup(kid); ok {
		return key, nil
	}

	if err := k.refreshIfStale(ctx); err != nil {
		return nil, err
	}

	if key, ok := k.lookup(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("kid=%q: %w", kid, ErrKeyNotFound)
}

// Refresh はJWKSを取得してキャッシュを置き換える。最小間隔は無視する。
func (k *KeySet) Refresh(ctx context.Context) error {
	k.refreshMu.Lock()
	defer k.refreshMu.Unlock()
	return k.refresh(ctx)
}

// lookup はキャッシュからkidに対応する鍵を探す。
func (k *KeySet) lookup(kid string) (*rsa.PublicKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[kid]
	return key, ok
}

// refreshIfStale は前回の取得から最小間隔以上経過している場合のみ再取得する。
// 取得待ちのリクエストは先行する取得の結果を共有する。
func (k *KeySet) refreshIfStale(ctx context.Context) error {
	k.refreshMu.Lock()
	defer k.refreshMu.Unlock()

	k.mu.RLock()
	lastAttempt := k.lastAttempt
	lastErr := k.lastErr
	k.mu.RUnlock()

	if !lastAttempt.IsZero() && time.Since(lastAttempt) < k.MinRefreshInterval {
		return lastErr
	}
	return k.refresh(ctx)
}

// refresh はJWKSを取得してキャッシュを置き換える。呼び出し側でrefreshMuを保持すること。
// 失敗した場合は既存のキャッシュを残す。
func (k *KeySet) refresh(ctx context.Context) error {
	keys, err := k.fetch(ctx)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.lastAttempt = time.Now()
	k.lastErr = err
	if err != nil {
		return err
	}
	k.keys = keys
	return nil
}

// fetch はJWKSドキュメントを取得し、署名用のRSA鍵だけをkidごとにまとめる。
func (k *KeySet) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	var doc document
	if err := k.client.GetJSON(ctx, k.path, &doc); err != nil {
		return nil, fmt.Errorf("JWKSの取得に失敗: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for i, raw := range doc.Keys {
		kid, pub, err := parseSigningKey(raw)
		if err != nil {
			log.Printf("[JWKS] keys[%d] を読み飛ばしました: %v", i, err)
			continue
		}
		if pub == nil {
			continue
		}
		keys[kid] = pub
	}
	return keys, nil
}

// parseSigningKey は1つのJWKをパースする。
// RSA以外の鍵、kidの無い鍵、署名用途でない鍵はnilを返す。
func parseSigningKey(raw json.RawMessage) (string, *rsa.PublicKey, error) {
	key, err := jwk.ParseKey(raw)
	if err != nil {
		return "", nil, fmt.Errorf("JWKのパースに失敗: %w", err)
	}

	if key.KeyType().String() != "RSA" {
		return "", nil, nil
	}
	kid, ok := key.KeyID()
	if !ok || kid == "" {
		return "", nil, nil
	}
	if use, ok := key.KeyUsage(); ok && use != "" && use != string(jwk.ForSignature) {
		return "", nil, nil
	}

	var pub rsa.PublicKey
	if err := jwk.Export(key, &pub); err != nil {
		return "", nil, fmt.Errorf("kid=%s のRSA公開鍵への変換に失敗: %w", kid, err)
	}
	return kid, &pub, nil
}

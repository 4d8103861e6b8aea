// Package httpclient は外部サービスからJSONを取得するHTTPクライアントを提供する。
//
// 現在はIDプロバイダが公開するJWKS（署名検証用の公開鍵セット）の取得に使用する。
package httpclient

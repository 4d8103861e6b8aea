// Package jwks はIDプロバイダが公開する署名検証用の公開鍵セット（JWKS）を扱う。
//
// 鍵セットは初回利用時に取得してメモリに保持し、未知のkidが要求されたときだけ
// 前回の取得から一定間隔以上空けて再取得する。取得に失敗した場合も間隔は空ける。
package jwks

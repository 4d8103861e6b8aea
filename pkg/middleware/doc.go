// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// JWTによる認可ゲート、リクエストID付与、レート制限、パニックリカバリ、
// CORS設定を含む。失敗はすべてapierrorの統一エラーレスポンスとして返す。
package middleware

// Package apierror はHTTP APIのエラー型と統一エラーレスポンスを提供する。
//
// ハンドラやミドルウェアは*Errorを返すだけでよく、レスポンスへの変換は
// Abortが一箇所で行う。レスポンスは常に次の形式になる。
//
//	{"success": false, "error": <status>, "message": <message>}
//
// 401の場合のみ "description" フィールドが追加される。
package apierror

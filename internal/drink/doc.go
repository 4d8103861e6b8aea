// Package drink はドリンクメニューAPIの内部実装を提供する。
//
// 公開のドリンク一覧（材料名を含まない短縮表示）と、権限を要求する
// 詳細一覧・作成・更新・削除を提供する。権限の確認はmiddleware.Authorizerに、
// 永続化はsqlcが生成したdbパッケージに委譲する。
//
// エンドポイント:
//   - GET    /drinks         公開。短縮表示の一覧
//   - GET    /drinks-detail  get:drinks-detail。詳細表示の一覧
//   - POST   /drinks         post:drinks。ドリンクの作成
//   - PATCH  /drinks/:id     patch:drinks。ドリンクの更新
//   - DELETE /drinks/:id     delete:drinks。ドリンクの削除
package drink

package drink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	drinkdb "github.com/nao1215/coffeeshop/internal/drink/db"
	"github.com/nao1215/coffeeshop/pkg/apierror"
	"github.com/nao1215/coffeeshop/pkg/httpclient"
	"github.com/nao1215/coffeeshop/pkg/jwks"
	"github.com/nao1215/coffeeshop/pkg/middleware"
	_ "modernc.org/sqlite"
)

// 各エンドポイントが要求する権限。
const (
	permissionGetDetail = "get:drinks-detail"
	permissionPost      = "post:drinks"
	permissionPatch     = "patch:drinks"
	permissionDelete    = "delete:drinks"
)

// listDetailFailure は詳細一覧の取得失敗時に返す説明文。
// 詳細一覧はDBエラーも401として返す。
const listDetailFailure = "The server could not verify that you are authorized to access the URL requested."

// Server はドリンクAPIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *drinkdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// authorizer はアクセストークンと権限を検証する認可ゲート。
	authorizer *middleware.Authorizer
}

// NewServer は新しいドリンクAPIサーバーを生成する。
// データベースの初期化、マイグレーション、認可ゲートの構築を行う。
func NewServer(cfg Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	ctx := context.Background()
	if err := initSchema(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	if cfg.ResetDatabase {
		if err := resetDrinks(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("データベースの初期化に失敗: %w", err)
		}
	}

	keys := jwks.New(httpclient.New(cfg.JWKSBaseURL()), jwks.DefaultPath)
	authorizer := middleware.NewAuthorizer(keys, cfg.Issuer(), cfg.Audience)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.RateLimitRPS > 0 {
		router.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit())
	}

	return newServer(router, cfg.Port, sqlDB, authorizer), nil
}

// newServer はルーター・DB・認可ゲートからServerを組み立て、ルーティングを設定する。
func newServer(router *gin.Engine, port string, sqlDB *sql.DB, authorizer *middleware.Authorizer) *Server {
	s := &Server{
		router:     router,
		port:       port,
		queries:    drinkdb.New(sqlDB),
		db:         sqlDB,
		authorizer: authorizer,
	}
	s.setupRoutes()
	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Shutdown はデータベース接続をクローズする。
func (s *Server) Shutdown() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 公開の短縮一覧
	s.router.GET("/drinks", s.handleListShort())
	// 詳細一覧
	s.router.GET("/drinks-detail", s.authorizer.RequirePermission(permissionGetDetail), s.handleListLong())
	// ドリンク作成
	s.router.POST("/drinks", s.authorizer.RequirePermission(permissionPost), s.handleCreate())
	// ドリンク更新
	s.router.PATCH("/drinks/:id", s.authorizer.RequirePermission(permissionPatch), s.handleUpdate())
	// ドリンク削除
	s.router.DELETE("/drinks/:id", s.authorizer.RequirePermission(permissionDelete), s.handleDelete())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "coffeeshop"})
	})

	s.router.NoRoute(func(c *gin.Context) {
		apierror.Abort(c, apierror.NotFound(nil))
	})
}

// handleListShort は公開のドリンク一覧を短縮表示で返すハンドラを返す。
func (s *Server) handleListShort() gin.HandlerFunc {
	return func(c *gin.Context) {
		drinks, err := s.queries.ListDrinks(c.Request.Context())
		if err != nil {
			apierror.Abort(c, apierror.Internal(fmt.Errorf("ドリンク一覧の取得に失敗: %w", err)))
			return
		}

		views := make([]shortDrink, 0, len(drinks))
		for _, d := range drinks {
			v, err := toShort(d)
			if err != nil {
				apierror.Abort(c, apierror.Internal(err))
				return
			}
			views = append(views, v)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "drinks": views})
	}
}

// handleListLong はドリンク一覧を詳細表示で返すハンドラを返す。
// 取得や変換に失敗した場合も401を返す。
func (s *Server) handleListLong() gin.HandlerFunc {
	return func(c *gin.Context) {
		drinks, err := s.queries.ListDrinks(c.Request.Context())
		if err != nil {
			apierror.Abort(c, apierror.Unauthorized(string(middleware.KindPermissionDenied), listDetailFailure,
				fmt.Errorf("ドリンク一覧の取得に失敗: %w", err)))
			return
		}

		views := make([]longDrink, 0, len(drinks))
		for _, d := range drinks {
			v, err := toLong(d)
			if err != nil {
				apierror.Abort(c, apierror.Unauthorized(string(middleware.KindPermissionDenied), listDetailFailure, err))
				return
			}
			views = append(views, v)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "drinks": views})
	}
}

// handleCreate はドリンク作成を処理するハンドラを返す。
// 入力不備とDBエラーはいずれも422として返す。
func (s *Server) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req drinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierror.Abort(c, apierror.Unprocessable(fmt.Errorf("リクエストが不正です: %w", err)))
			return
		}
		if err := req.validate(); err != nil {
			apierror.Abort(c, apierror.Unprocessable(err))
			return
		}

		recipe, err := req.recipeOr(Recipe{}).encode()
		if err != nil {
			apierror.Abort(c, apierror.Unprocessable(err))
			return
		}

		created, err := s.queries.CreateDrink(c.Request.Context(), drinkdb.CreateDrinkParams{
			Title:  *req.Title,
			Recipe: recipe,
		})
		if err != nil {
			apierror.Abort(c, apierror.Unprocessable(fmt.Errorf("ドリンクの作成に失敗: %w", err)))
			return
		}

		view, err := toLong(created)
		if err != nil {
			apierror.Abort(c, apierror.Unprocessable(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "drinks": []longDrink{view}})
	}
}

// handleUpdate はドリンク更新を処理するハンドラを返す。
// 存在しないIDはボディの内容にかかわらず404を返す。
// ボディが読めない、またはtitleが無い場合は書き込みを行わず400を返す。
func (s *Server) handleUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			apierror.Abort(c, apierror.NotFound(nil))
			return
		}

		var req drinkRequest
		bindErr := c.ShouldBindJSON(&req)

		current, err := s.queries.GetDrink(c.Request.Context(), id)
		if errors.Is(err, sql.ErrNoRows) {
			apierror.Abort(c, apierror.NotFound(nil))
			return
		}
		if err != nil {
			apierror.Abort(c, apierror.Unprocessable(fmt.Errorf("ドリンクの取得に失敗: %w", err)))
			return
		}

		if bindErr != nil {
			apierror.Abort(c, apierror.BadRequest(fmt.Errorf("リクエストが不正です: %w", bindErr)))
			return
		}
		if err := req.validate(); err != nil {
			if errors.Is(err, errTitleMissing) {
				apierror.Abort(c, apierror.BadRequest(err))
				return
			}
			apierror.Abort(c, apierror.Unprocessable(err))
			return
		}

		recipe := current.Recipe
		if req.Recipe != nil {
			recipe, err = req.Recipe.encode()
			if err != nil {
				apierror.Abort(c, apierror.Unprocessable(err))
				return
			}
		}

		updated, err := s.queries.UpdateDrink(c.Request.Context(), drinkdb.UpdateDrinkParams{
			Title:  *req.Title,
			Recipe: recipe,
			ID:     id,
		})
		if errors.Is(err, sql.ErrNoRows) {
			apierror.Abort(c, apierror.NotFound(nil))
			return
		}
		if err != nil {
			apierror.Abort(c, apierror.Unprocessable(fmt.Errorf("ドリンクの更新に失敗: %w", err)))
			return
		}

		view, err := toLong(updated)
		if err != nil {
			apierror.Abort(c, apierror.Unprocessable(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "drinks": []longDrink{view}})
	}
}

// handleDelete はドリンク削除を処理するハンドラを返す。
func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			apierror.Abort(c, apierror.NotFound(nil))
			return
		}

		if _, err := s.queries.GetDrink(c.Request.Context(), id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				apierror.Abort(c, apierror.NotFound(nil))
				return
			}
			apierror.Abort(c, apierror.Unprocessable(fmt.Errorf("ドリンクの取得に失敗: %w", err)))
			return
		}

		deleted, err := s.queries.DeleteDrink(c.Request.Context(), id)
		if err != nil {
			apierror.Abort(c, apierror.Unprocessable(fmt.Errorf("ドリンクの削除に失敗: %w", err)))
			return
		}
		if deleted == 0 {
			apierror.Abort(c, apierror.NotFound(nil))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "delete": id})
	}
}

// parseID はパスパラメータのidを整数として取り出す。
// 整数でない場合は該当するリソースが無いものとして扱う。
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

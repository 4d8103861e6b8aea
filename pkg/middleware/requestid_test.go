package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/coffeeshop/pkg/apierror"
)

// TestRequestID はRequestIDミドルウェアを検証する。
func TestRequestID(t *testing.T) {
	t.Parallel()

	serve := func(header string) (*httptest.ResponseRecorder, string) {
		var captured string
		router := gin.New()
		router.Use(RequestID())
		router.GET("/drinks", func(c *gin.Context) {
			captured = GetRequestID(c)
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		req := httptest.NewRequest(http.MethodGet, "/drinks", nil)
		if header != "" {
			req.Header.Set(HeaderRequestID, header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w, captured
	}

	t.Run("ヘッダーが無い場合UUIDが生成されること", func(t *testing.T) {
		t.Parallel()

		w, captured := serve("")

		if _, err := uuid.Parse(captured); err != nil {
			t.Errorf("リクエストIDがUUIDではない: %q", captured)
		}
		if got := w.Header().Get(HeaderRequestID); got != captured {
			t.Errorf("X-Request-ID = %q, want %q", got, captured)
		}
	})

	t.Run("エラーログと同じキーで参照できること", func(t *testing.T) {
		t.Parallel()

		var fromKey string
		router := gin.New()
		router.Use(RequestID())
		router.GET("/drinks", func(c *gin.Context) {
			fromKey = c.GetString(apierror.RequestIDKey)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/drinks", nil)
		req.Header.Set(HeaderRequestID, "client-req-2")
		router.ServeHTTP(httptest.NewRecorder(), req)

		if fromKey != "client-req-2" {
			t.Errorf("c.GetString(apierror.RequestIDKey) = %q, want %q", fromKey, "client-req-2")
		}
	})

	t.Run("クライアントのリクエストIDが引き継がれること", func(t *testing.T) {
		t.Parallel()

		w, captured := serve("client-req-1")

		if captured != "client-req-1" {
			t.Errorf("GetRequestID() = %q, want %q", captured, "client-req-1")
		}
		if got := w.Header().Get(HeaderRequestID); got != "client-req-1" {
			t.Errorf("X-Request-ID = %q, want %q", got, "client-req-1")
		}
	})

	t.Run("長すぎるリクエストIDは置き換えられること", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("a", maxRequestIDLength+1)
		_, captured := serve(long)

		if captured == long {
			t.Error("長すぎるリクエストIDがそのまま使われている")
		}
		if _, err := uuid.Parse(captured); err != nil {
			t.Errorf("置き換え後のリクエストIDがUUIDではない: %q", captured)
		}
	})

	t.Run("リクエストごとに異なるIDが生成されること", func(t *testing.T) {
		t.Parallel()

		_, first := serve("")
		_, second := serve("")
		if first == second {
			t.Errorf("リクエストIDが重複している: %q", first)
		}
	})
}

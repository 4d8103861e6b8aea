package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/coffeeshop/pkg/apierror"
)

// HeaderRequestID はリクエストIDを伝播するHTTPヘッダー。
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLength は受け入れるリクエストIDの最大長。
const maxRequestIDLength = 128

// RequestID はリクエストごとにIDを付与するGinミドルウェアを返す。
// クライアントがX-Request-IDを送ってきた場合はその値を引き継ぎ、無ければUUIDを生成する。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Set(apierror.RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID はGinコンテキストからリクエストIDを取得する。
func GetRequestID(c *gin.Context) string {
	return c.GetString(apierror.RequestIDKey)
}

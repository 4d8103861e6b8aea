package middleware

import (
	"fmt"
	"log"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/coffeeshop/pkg/apierror"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時にスタックトレースをログに出力し、500の統一エラーレスポンスを返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] [%s] %s %s: %v\n%s", GetRequestID(c), c.Request.Method, c.Request.URL.Path, r, debug.Stack())
				apierror.Abort(c, apierror.Internal(fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}

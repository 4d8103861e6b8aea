package apierror

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 各ステータスコードに対応する固定メッセージ。
const (
	MessageBadRequest      = "bad request"
	MessageNotFound        = "resource not found"
	MessageUnprocessable   = "unprocessable"
	MessageTooManyRequests = "too many requests"
	MessageInternal        = "Internal Server Error"
)

// Error はHTTPステータスとクライアント向けメッセージを持つエラー。
// Errには原因となった内部エラーを保持し、ログにのみ出力する。
type Error struct {
	// Status はHTTPステータスコード。
	Status int
	// Message はクライアントに返すメッセージ。
	Message string
	// Description は401のときに返す詳細説明。
	Description string
	// Err は原因となった内部エラー。nilの場合もある。
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *Error) Unwrap() error {
	return e.Err
}

// BadRequest は400エラーを生成する。
func BadRequest(err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: MessageBadRequest, Err: err}
}

// Unauthorized は401エラーを生成する。codeは失敗理由の識別子、descriptionは説明文。
func Unauthorized(code, description string, err error) *Error {
	return &Error{
		Status:      http.StatusUnauthorized,
		Message:     code,
		Description: description,
		Err:         err,
	}
}

// NotFound は404エラーを生成する。
func NotFound(err error) *Error {
	return &Error{Status: http.StatusNotFound, Message: MessageNotFound, Err: err}
}

// Unprocessable は422エラーを生成する。
func Unprocessable(err error) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: MessageUnprocessable, Err: err}
}

// TooManyRequests は429エラーを生成する。
func TooManyRequests() *Error {
	return &Error{Status: http.StatusTooManyRequests, Message: MessageTooManyRequests}
}

// Internal は500エラーを生成する。
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: MessageInternal, Err: err}
}

// envelope は統一エラーレスポンスのJSON構造。
type envelope struct {
	Success     bool   `json:"success"`
	Error       int    `json:"error"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// Abort はエラーを統一エラーレスポンスに変換し、後続のハンドラを中断する。
// *Error以外のエラーは500として扱う。
func Abort(c *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}

	if apiErr.Err != nil {
		log.Printf("[%s] %s %s: %v", requestID(c), c.Request.Method, c.Request.URL.Path, apiErr)
	}

	body := envelope{
		Success: false,
		Error:   apiErr.Status,
		Message: apiErr.Message,
	}
	if apiErr.Status == http.StatusUnauthorized {
		body.Description = apiErr.Description
	}
	c.AbortWithStatusJSON(apiErr.Status, body)
}

// RequestIDKey はRequestIDミドルウェアがGinコンテキストにリクエストIDを格納するキー。
const RequestIDKey = "request_id"

// requestID はRequestIDミドルウェアが設定したリクエストIDを返す。
func requestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return "-"
}

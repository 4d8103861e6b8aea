package middleware

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nao1215/coffeeshop/pkg/apierror"
)

// AuthErrorKind は認可失敗の種類。値はエラーレスポンスのmessageとして返す。
type AuthErrorKind string

// 認可失敗の種類。いずれも401として返す。
const (
	KindMissingHeader    AuthErrorKind = "authorization_header_missing"
	KindMalformedHeader  AuthErrorKind = "invalid_header"
	KindInvalidSignature AuthErrorKind = "invalid_signature"
	KindTokenExpired     AuthErrorKind = "token_expired"
	KindInvalidClaims    AuthErrorKind = "invalid_claims"
	KindPermissionDenied AuthErrorKind = "unauthorized"
)

// AuthError は認可ゲートが返すエラー。
type AuthError struct {
	// Kind は失敗の種類。
	Kind AuthErrorKind
	// Description はクライアントに返す説明文。
	Description string
	// Err は原因となったエラー。
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// Unwrap は原因エラーを返す。
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Claims は検証済みアクセストークンのクレーム。
type Claims struct {
	jwt.RegisteredClaims
	// Permissions はトークンに付与された権限の一覧。
	Permissions []string `json:"permissions"`
}

// HasPermission は権限一覧にpermissionが含まれているかを返す。
func (c *Claims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}

// KeyProvider はkidに対応する署名検証用の公開鍵を返す。
// 本番ではjwks.KeySetが実装する。
type KeyProvider interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// contextKeyClaims はGinコンテキストにクレームを格納するキー。
const contextKeyClaims = "claims"

// Authorizer はBearerトークンを検証し、権限を確認する認可ゲート。
// 状態を持たないため複数のリクエストから並行して利用できる。
type Authorizer struct {
	// keys は署名検証用の公開鍵の取得元。
	keys KeyProvider
	// parser は発行者・オーディエンス・有効期限を検証するJWTパーサー。
	parser *jwt.Parser
}

// NewAuthorizer は新しいAuthorizerを生成する。
// issuerとaudienceはトークンのiss、audクレームと一致する必要がある。
func NewAuthorizer(keys KeyProvider, issuer, audience string) *Authorizer {
	return &Authorizer{
		keys: keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
		),
	}
}

// Authorize はリクエストのAuthorizationヘッダーを検証し、
// permissionを持つトークンであればクレームを返す。
// 失敗時は*AuthErrorを返し、レスポンスには何も書き込まない。
func (a *Authorizer) Authorize(r *http.Request, permission string) (*Claims, error) {
	tokenString, err := bearerToken(r)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err = a.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("トークンヘッダーにkidがありません")
		}
		return a.keys.Key(r.Context(), kid)
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if claims.Permissions == nil {
		return nil, &AuthError{Kind: KindPermissionDenied, Description: "Permissions not included in JWT."}
	}
	if !claims.HasPermission(permission) {
		return nil, &AuthError{Kind: KindPermissionDenied, Description: "Permission not found."}
	}
	return claims, nil
}

// bearerToken はAuthorizationヘッダーから "Bearer <token>" 形式のトークンを取り出す。
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", &AuthError{Kind: KindMissingHeader, Description: "Authorization header is expected."}
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", &AuthError{Kind: KindMalformedHeader, Description: `Authorization header must be "Bearer <token>".`}
	}
	return parts[1], nil
}

// classifyTokenError はjwtパッケージのエラーを認可失敗の種類に分類する。
// 有効期限切れは他のクレームエラーより優先する。
func classifyTokenError(err error) *AuthError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &AuthError{Kind: KindTokenExpired, Description: "Token expired.", Err: err}
	case errors.Is(err, jwt.ErrTokenInvalidClaims), isClaimTypeError(err):
		return &AuthError{Kind: KindInvalidClaims, Description: "Incorrect claims. Please, check the audience and issuer.", Err: err}
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return &AuthError{Kind: KindInvalidSignature, Description: "Unable to find the appropriate key.", Err: err}
	default:
		return &AuthError{Kind: KindInvalidSignature, Description: "Unable to verify authentication token.", Err: err}
	}
}

// isClaimTypeError は署名とは無関係に、クレームの型が不正でデコードできなかったかを判定する。
func isClaimTypeError(err error) bool {
	var typeErr *json.UnmarshalTypeError
	return errors.Is(err, jwt.ErrTokenMalformed) && errors.As(err, &typeErr)
}

// RequirePermission はpermissionを要求するGinミドルウェアを返す。
// 認可に成功した場合、コンテキストにクレームを設定する。
func (a *Authorizer) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.Authorize(c.Request, permission)
		if err != nil {
			apierror.Abort(c, toAPIError(err))
			return
		}

		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}

// toAPIError は認可エラーを401のAPIエラーに変換する。
func toAPIError(err error) *apierror.Error {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return apierror.Unauthorized(string(authErr.Kind), authErr.Description, authErr)
	}
	return apierror.Unauthorized(string(KindInvalidSignature), "Unable to verify authentication token.", err)
}

// GetClaims はGinコンテキストから検証済みクレームを取得する。
// RequirePermissionミドルウェアが事前に適用されている必要がある。
func GetClaims(c *gin.Context) *Claims {
	v, _ := c.Get(contextKeyClaims)
	if claims, ok := v.(*Claims); ok {
		return claims
	}
	return nil
}

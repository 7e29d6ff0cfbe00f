package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	uuid "github.com/google/uuid"
)

var errInvalidToken = errors.New("invalid token")

// TokenDetails ...
type TokenDetails struct {
	AccessToken string
	AccessUUID  string
	AtExpires   int64
}

// AccessDetails ...
type AccessDetails struct {
	AccessUUID string
	UserID     string
	ExpiresAt  time.Time
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// CreateToken issues a token for userID. An empty accessUUID starts a new session,
// otherwise the session id is carried over (token refresh).
func (t *TokenService) CreateToken(userID, accessUUID string) (*TokenDetails, error) {
	td := &TokenDetails{}
	td.AtExpires = t.now().Add(t.ttl).Unix()
	td.AccessUUID = accessUUID
	if td.AccessUUID == "" {
		td.AccessUUID = uuid.New().String()
	}

	atClaims := jwt.MapClaims{}
	atClaims["authorized"] = true
	atClaims["access_uuid"] = td.AccessUUID
	atClaims["user_id"] = userID
	atClaims["exp"] = td.AtExpires
	// two tokens for the same session must still differ
	atClaims["jti"] = uuid.New().String()

	at := jwt.NewWithClaims(jwt.SigningMethodHS256, atClaims)
	var err error
	td.AccessToken, err = at.SignedString(t.secret)
	if err != nil {
		return nil, err
	}
	return td, nil
}

// ExtractToken ...
func (t *TokenService) ExtractToken(r *http.Request) string {
	bearToken := r.Header.Get("Authorization")
	//normally Authorization the_token_xxx
	strArr := strings.Split(bearToken, " ")
	if len(strArr) == 2 {
		return strArr[1]
	}
	return ""
}

// VerifyToken ...
func (t *TokenService) VerifyToken(tokenString string) (*jwt.Token, error) {
	parser := jwt.Parser{}
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		//Make sure that the token method conform to "SigningMethodHMAC"
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errInvalidToken
	}
	return token, nil
}

// ExtractTokenMetadata verifies tokenString and returns its session claims.
func (t *TokenService) ExtractTokenMetadata(tokenString string) (*AccessDetails, error) {
	token, err := t.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	accessUUID, ok := claims["access_uuid"].(string)
	if !ok || accessUUID == "" {
		return nil, errInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, errInvalidToken
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, errInvalidToken
	}
	return &AccessDetails{
		AccessUUID: accessUUID,
		UserID:     userID,
		ExpiresAt:  time.Unix(int64(exp), 0),
	}, nil
}

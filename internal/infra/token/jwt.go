package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"perfumeshop/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// access tokenから取り出す値
type Claims struct {
	UserID       int64
	Email        string
	Role         string
	TokenVersion int
}

// HS256でaccess tokenを発行・検証する
type JWT struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl}
}

func (j *JWT) Issue(user *model.User, now time.Time) (string, int, error) {
	if user == nil || user.ID <= 0 {
		return "", 0, errors.New("token: user required")
	}
	exp := now.Add(j.ttl)

	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"role":  string(user.Role),
		"tv":    user.TokenVersion,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(j.secret)
	if err != nil {
		return "", 0, fmt.Errorf("token: sign: %w", err)
	}
	return signed, int(j.ttl.Seconds()), nil
}

func (j *JWT) Parse(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil || tok == nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	userID, err := parseUserID(mc["sub"])
	if err != nil || userID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	tv, err := parseInt(mc["tv"])
	if err != nil || tv < 0 {
		return Claims{}, ErrInvalidToken
	}
	// email/role は無くても通す（権限はDBのuserで見る）
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)

	return Claims{UserID: userID, Email: email, Role: role, TokenVersion: tv}, nil
}

// subをint64に変換する
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}

func parseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		i64, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return 0, err
		}
		return int(i64), nil
	default:
		return 0, errors.New("invalid int")
	}
}

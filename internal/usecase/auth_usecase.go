package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"perfumeshop/internal/domain/model"
	repo "perfumeshop/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserDTO struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
	IsActive     bool   `json:"is_active"`
}

// GET /me の返却
type CurrentUserDTO struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthRegisterResponse struct {
	User UserDTO `json:"user"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type ForceLogoutResponse struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

type AuthUsecase struct {
	users     repo.UserRepository
	auditRepo repo.AuditLogRepository
	tokens    TokenIssuer
	validator AuthValidator
	now       func() time.Time
}

func NewAuthUsecase(
	users repo.UserRepository,
	auditRepo repo.AuditLogRepository,
	tokens TokenIssuer,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		auditRepo: auditRepo,
		tokens:    tokens,
		validator: validator,
		now:       time.Now,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthRegisterResponse, error) {
	req.Email = normalizeEmail(req.Email)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, req.Email, req.Password); err != nil {
		return nil, validationHTTPError(err)
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     true,
	}

	//validatorをすり抜けた同時登録は一意制約で弾く
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "email already used")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return &AuthRegisterResponse{User: toUserDTO(user)}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*AuthLoginResponse, error) {
	req.Email = normalizeEmail(req.Email)

	if err := u.validator.ValidateLogin(ctx, req.Email, req.Password); err != nil {
		return nil, validationHTTPError(err)
	}

	user, err := u.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "user disabled")
	}

	now := u.now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	accessToken, expiresIn, err := u.tokens.Issue(user, now)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    expiresIn,
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

// ログイン中のユーザー。middlewareが解決したuserをそのまま使う
func (u *AuthUsecase) Me(user *model.User) (CurrentUserDTO, error) {
	if user == nil || user.ID <= 0 {
		return CurrentUserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return CurrentUserDTO{
		ID:      user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin(),
	}, nil
}

// token_versionを上げて既存のaccess tokenを全部無効にする
func (u *AuthUsecase) ForceLogout(ctx context.Context, actorAdminUserID int64, targetUserID int64) (*ForceLogoutResponse, error) {
	if actorAdminUserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.validator.ValidateForceLogout(ctx, targetUserID); err != nil {
		return nil, validationHTTPError(err)
	}

	before, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if before == nil {
		return nil, NewHTTPError(http.StatusNotFound, "user not found")
	}

	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//更新後を取得してnew_token_versionを返す
	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil || user == nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	beforeJSON, _ := auditJSON(map[string]int{"token_version": before.TokenVersion})
	afterJSON, _ := auditJSON(map[string]int{"token_version": user.TokenVersion})
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionForceLogout,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
	}); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return &ForceLogoutResponse{
		UserID:          user.ID,
		NewTokenVersion: user.TokenVersion,
	}, nil
}

// validatorの戻りをstatusに寄せる
func validationHTTPError(err error) error {
	if errors.Is(err, ErrConflict) {
		return NewHTTPError(http.StatusConflict, err.Error())
	}
	return NewHTTPError(http.StatusBadRequest, err.Error())
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
	}
}

package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"perfumeshop/internal/domain/model"
	repo "perfumeshop/internal/repository"
)

type ProfileInput struct {
	FullName   string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

type ProfileOutput struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type ProfileUsecase struct {
	profiles  repo.ProfileRepository
	validator CheckoutValidator
}

func NewProfileUsecase(profiles repo.ProfileRepository, validator CheckoutValidator) *ProfileUsecase {
	return &ProfileUsecase{profiles: profiles, validator: validator}
}

// 未保存なら空のプロフィールを返す
func (u *ProfileUsecase) Get(ctx context.Context, userID int64) (ProfileOutput, error) {
	if userID <= 0 {
		return ProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := u.profiles.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProfileOutput{}, nil
	}
	if err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toProfileOutput(p), nil
}

// 初回保存で作る（user_idでupsert）
func (u *ProfileUsecase) Upsert(ctx context.Context, userID int64, in ProfileInput) (ProfileOutput, error) {
	if userID <= 0 {
		return ProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	in = ProfileInput{
		FullName:   strings.TrimSpace(in.FullName),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
	}
	if err := u.validator.ValidateProfile(ctx, in); err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	saved, err := u.profiles.Upsert(ctx, model.UserProfile{
		UserID:     userID,
		FullName:   in.FullName,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	})
	if err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toProfileOutput(saved), nil
}

func toProfileOutput(p model.UserProfile) ProfileOutput {
	return ProfileOutput{
		FullName:   p.FullName,
		Phone:      p.Phone,
		Address:    p.Address,
		City:       p.City,
		State:      p.State,
		PostalCode: p.PostalCode,
		Country:    p.Country,
	}
}

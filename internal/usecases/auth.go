package usecases

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"rolebot/internal/entities"
	"rolebot/internal/repository"
)

// AuthUsecase authenticates operators of the admin HTTP API. Chat users never
// log in; this exists only for the dashboard.
type AuthUsecase struct {
	accounts  *repository.AccountRepository
	jwtSecret []byte
}

func NewAuthUsecase(accounts *repository.AccountRepository, secret string) *AuthUsecase {
	return &AuthUsecase{
		accounts:  accounts,
		jwtSecret: []byte(secret),
	}
}

func (uc *AuthUsecase) Login(username, password string) (string, error) {
	account, err := uc.accounts.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": account.ID,
		"role":    account.Role,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// EnsureOperator creates the initial dashboard account if it does not exist
// (called on startup).
func (uc *AuthUsecase) EnsureOperator(username, password string) error {
	account, err := uc.accounts.GetByUsername(username)
	if err != nil {
		return err
	}
	if account != nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.accounts.Create(&entities.Account{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         "admin",
	})
}

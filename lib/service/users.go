package service

import (
	"context"
	"fmt"

	"github.com/coopfin/coophub/db/models"
	"github.com/coopfin/coophub/lib/tokens"
	"golang.org/x/crypto/bcrypt"
)

func (svc *CoophubService) CreateUser(ctx context.Context, login, password string) (*models.User, error) {
	if login == "" || password == "" {
		return nil, ValidationError{Reason: "login and password are required"}
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Login:    login,
		Password: string(hashedPassword),
	}
	if _, err := svc.DB.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, asCoreError(err)
	}
	return user, nil
}

func (svc *CoophubService) FindUser(ctx context.Context, userId int64) (*models.User, error) {
	user := &models.User{}
	err := svc.DB.NewSelect().Model(user).Where("id = ?", userId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, asCoreError(notFoundOr(err, "user", userId))
	}
	return user, nil
}

func (svc *CoophubService) GenerateToken(ctx context.Context, login, password string) (accessToken string, err error) {
	user := &models.User{}
	if err := svc.DB.NewSelect().Model(user).Where("login = ?", login).Limit(1).Scan(ctx); err != nil {
		return "", fmt.Errorf("bad auth")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", fmt.Errorf("bad auth")
	}
	if user.Deactivated {
		return "", fmt.Errorf("bad auth")
	}
	return tokens.GenerateAccessToken(svc.Config.JWTSecret, svc.Config.JWTAccessTokenExpiry, user)
}

package service

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"parking-billing/internal/domain"
	"parking-billing/internal/lock"
	"parking-billing/internal/repository"
)

// WalletService credits and reports user balances.
type WalletService interface {
	Deposit(ctx context.Context, userID int64, amount float64) (float64, error)
	Balance(ctx context.Context, userID int64) (float64, error)
}

type walletService struct {
	users  repository.UserRepository
	locker lock.Locker
	logger *logrus.Logger
}

func NewWalletService(users repository.UserRepository, locker lock.Locker, logger *logrus.Logger) WalletService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &walletService{users: users, locker: locker, logger: logger}
}

func (s *walletService) Deposit(ctx context.Context, userID int64, amount float64) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, fmt.Errorf("deposit must be greater than 0: %w", domain.ErrValidation)
	}

	release, err := s.locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		return 0, fmt.Errorf("lock user: %w", err)
	}
	defer release()

	balance, err := s.users.AdjustBalance(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  amount,
		"balance": balance,
	}).Info("wallet deposit")
	return balance, nil
}

func (s *walletService) Balance(ctx context.Context, userID int64) (float64, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

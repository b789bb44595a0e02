package mocks

import (
	"context"
	"time"

	"github.com/ReefCultures/RateBox/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateQuote(ctx context.Context, in models.RateQuoteCreateInput) (*models.RateQuote, error) {
	args := m.Called(ctx, in)
	var q *models.RateQuote
	if args.Get(0) != nil {
		q = args.Get(0).(*models.RateQuote)
	}
	return q, args.Error(1)
}

func (m *MockRepository) GetQuoteByKey(ctx context.Context, key string) (*models.RateQuote, error) {
	args := m.Called(ctx, key)
	var q *models.RateQuote
	if args.Get(0) != nil {
		q = args.Get(0).(*models.RateQuote)
	}
	return q, args.Error(1)
}

func (m *MockRepository) RedeemQuote(ctx context.Context, key string, now time.Time) (*models.RateQuote, error) {
	args := m.Called(ctx, key, now)
	var q *models.RateQuote
	if args.Get(0) != nil {
		q = args.Get(0).(*models.RateQuote)
	}
	return q, args.Error(1)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"caudal/internal/domain"
	"caudal/internal/repository"
)

type ufService struct {
	rates repository.UFRateRepo
}

func NewUFService(rates repository.UFRateRepo) UFService {
	return &ufService{rates: rates}
}

func (s *ufService) SetRate(ctx context.Context, date time.Time, value decimal.Decimal) (*domain.UFRate, error) {
	if value.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("uf rate must be positive, got %s", value)
	}
	rate := &domain.UFRate{Date: date, Value: value}
	if err := s.rates.Upsert(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *ufService) RateFor(ctx context.Context, date time.Time) (*domain.UFRate, error) {
	return s.rates.GetAtOrBefore(ctx, date)
}

func (s *ufService) Latest(ctx context.Context) (*domain.UFRate, error) {
	return s.rates.Latest(ctx)
}

func (s *ufService) ListRates(ctx context.Context, limit int) ([]*domain.UFRate, error) {
	return s.rates.List(ctx, limit)
}

// ToCLP converts a UF amount to pesos using the rate effective on the given
// date (exact date, else the latest earlier one). Peso amounts are rounded
// to whole pesos.
func (s *ufService) ToCLP(ctx context.Context, amountUF decimal.Decimal, date time.Time) (*RateConversion, error) {
	rate, err := s.rates.GetAtOrBefore(ctx, date)
	if err != nil {
		return nil, err
	}
	return &RateConversion{
		AmountUF:  amountUF,
		AmountCLP: amountUF.Mul(rate.Value).Round(0),
		Rate:      rate,
	}, nil
}

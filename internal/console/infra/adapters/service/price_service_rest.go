package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
)

type PriceServiceREST struct {
	client *Client
}

var _ ports.PriceService = (*PriceServiceREST)(nil)

func NewPriceServiceREST(client *Client) *PriceServiceREST {
	return &PriceServiceREST{client: client}
}

func (s *PriceServiceREST) ListPrices(ctx context.Context) ([]entity.PricingPackage, error) {
	var out []priceDTO
	if _, err := s.client.do(ctx, http.MethodGet, s.client.paths.Prices, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	prices := make([]entity.PricingPackage, 0, len(out))
	for _, d := range out {
		prices = append(prices, mapPriceDTOToEntity(d))
	}
	return prices, nil
}

func (s *PriceServiceREST) CreatePrice(ctx context.Context, p entity.PricingPackage) (*entity.PricingPackage, error) {
	var out priceDTO
	if _, err := s.client.do(ctx, http.MethodPost, s.client.paths.Prices, nil, mapPriceEntityToDTO(p), &out); err != nil {
		return nil, fmt.Errorf("create price: %w", err)
	}
	created := mapPriceDTOToEntity(out)
	return &created, nil
}

func (s *PriceServiceREST) UpdatePrice(ctx context.Context, p entity.PricingPackage) error {
	path := fmt.Sprintf("%s/%d", s.client.paths.Prices, p.PriceID)
	if _, err := s.client.do(ctx, http.MethodPut, path, nil, mapPriceEntityToDTO(p), nil); err != nil {
		return fmt.Errorf("update price %d: %w", p.PriceID, err)
	}
	return nil
}

func (s *PriceServiceREST) DeletePrice(ctx context.Context, priceID int64) error {
	path := fmt.Sprintf("%s/%d", s.client.paths.Prices, priceID)
	if _, err := s.client.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete price %d: %w", priceID, err)
	}
	return nil
}

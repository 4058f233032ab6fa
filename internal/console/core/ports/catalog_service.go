package ports

import (
	"context"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

type PriceService interface {
	ListPrices(ctx context.Context) ([]entity.PricingPackage, error)
	CreatePrice(ctx context.Context, p entity.PricingPackage) (*entity.PricingPackage, error)
	UpdatePrice(ctx context.Context, p entity.PricingPackage) error
	DeletePrice(ctx context.Context, priceID int64) error
}

type ContentFilter struct {
	SortBy      string
	Descending  bool
	PageNumber  int
	PageSize    int
	ContentType string
	SearchTerm  string
}

type ContentService interface {
	ListContent(ctx context.Context, filter ContentFilter) (Page[entity.ContentItem], error)
}

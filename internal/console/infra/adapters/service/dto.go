package service

import (
	"strings"
	"time"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

type paginationDTO struct {
	PageNumber   int `json:"pageNumber"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
}

type orderDTO struct {
	OrderID            int64   `json:"orderId"`
	CustomerID         int64   `json:"customerId"`
	PickupLocation     string  `json:"pickupLocation"`
	Destination        string  `json:"destination"`
	Weight             float64 `json:"weight"`
	Quantity           int     `json:"quantity"`
	TransportMethod    string  `json:"transportMethod"`
	AdditionalServices string  `json:"additionalServices"`
	PricingID          int64   `json:"pricingId,omitempty"`
	Total              float64 `json:"total"`
	Status             string  `json:"status"`
	PlacedDate         string  `json:"placedDate,omitempty"`
}

type priceDTO struct {
	PriceID                int64   `json:"priceId"`
	TransportMethod        string  `json:"transportMethod"`
	WeightRange            string  `json:"weightRange"`
	PricePerKg             float64 `json:"pricePerKg"`
	AdditionalServicePrice float64 `json:"additionalServicePrice"`
}

type contentDTO struct {
	ContentID    int64  `json:"contentId"`
	CreatedBy    int64  `json:"createdBy"`
	CreateByName string `json:"createByName"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	ContentType  string `json:"contentType"`
	Image        string `json:"image"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

type paymentDTO struct {
	URL string `json:"url"`
}

func mapPagination(p *paginationDTO) entity.Pagination {
	if p == nil {
		return entity.Pagination{}
	}
	return entity.Pagination{
		PageNumber:   p.PageNumber,
		PageSize:     p.PageSize,
		TotalRecords: p.TotalRecords,
		TotalPages:   p.TotalPages,
	}
}

func mapOrderDTOToEntity(d orderDTO) entity.Order {
	// Unknown statuses are kept verbatim so staff can still see them; the
	// status machine rejects any transition out of them.
	status, ok := entity.ParseOrderStatus(d.Status)
	if !ok {
		status = entity.OrderStatus(d.Status)
	}
	return entity.Order{
		ID:                 d.OrderID,
		CustomerID:         d.CustomerID,
		PickupLocation:     d.PickupLocation,
		Destination:        d.Destination,
		Weight:             d.Weight,
		Quantity:           d.Quantity,
		TransportMethod:    entity.TransportMethod(d.TransportMethod),
		AdditionalServices: d.AdditionalServices,
		PricingID:          d.PricingID,
		Total:              d.Total,
		Status:             status,
		PlacedDate:         parseAPITime(d.PlacedDate),
	}
}

func mapPriceDTOToEntity(d priceDTO) entity.PricingPackage {
	return entity.PricingPackage{
		PriceID:                d.PriceID,
		TransportMethod:        entity.TransportMethod(d.TransportMethod),
		WeightRange:            d.WeightRange,
		PricePerKg:             d.PricePerKg,
		AdditionalServicePrice: d.AdditionalServicePrice,
	}
}

func mapPriceEntityToDTO(p entity.PricingPackage) priceDTO {
	return priceDTO{
		PriceID:                p.PriceID,
		TransportMethod:        string(p.TransportMethod),
		WeightRange:            p.WeightRange,
		PricePerKg:             p.PricePerKg,
		AdditionalServicePrice: p.AdditionalServicePrice,
	}
}

func mapContentDTOToEntity(d contentDTO) entity.ContentItem {
	item := entity.ContentItem{
		ContentID:    d.ContentID,
		CreatedBy:    d.CreatedBy,
		CreateByName: d.CreateByName,
		Title:        d.Title,
		Content:      d.Content,
		ContentType:  d.ContentType,
		Image:        d.Image,
		CreatedAt:    parseAPITime(d.CreatedAt),
	}
	if t := parseAPITime(d.UpdatedAt); !t.IsZero() {
		item.UpdatedAt = &t
	}
	return item
}

// apiTimeLayouts covers RFC3339 and the zone-less timestamps the API emits.
var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseAPITime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range apiTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

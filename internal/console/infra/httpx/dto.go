package httpx

import (
	"time"

	"github.com/jcmexdev/koi-console/internal/audit"
	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

type LoginRequest struct {
	AccessToken string `json:"accessToken"`
}

type SessionResponse struct {
	User      entity.UserInfo `json:"user"`
	ExpiresAt string          `json:"expiresAt"`
}

type ScreenListResponse struct {
	Screens []string `json:"screens"`
}

type AdvanceResponse struct {
	Status entity.OrderStatus `json:"status"`
	Screen any                `json:"screen"`
}

type CreatePostRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	Image       string `json:"image"`
}

// OrderDraftRequest is the order form as the client last rendered it.
type OrderDraftRequest struct {
	PickupLocation     string  `json:"pickupLocation"`
	Destination        string  `json:"destination"`
	TransportMethod    string  `json:"transportMethod"`
	AdditionalServices string  `json:"additionalServices"`
	PriceID            int64   `json:"priceId"`
	Weight             float64 `json:"weight"`
	Quantity           int     `json:"quantity"`
}

type EstimateResponse struct {
	Total float64 `json:"total"`
}

type CheckoutResponse struct {
	Order      entity.Order `json:"order"`
	PaymentURL string       `json:"paymentUrl,omitempty"`
}

type PriceRequest struct {
	TransportMethod        string  `json:"transportMethod"`
	WeightRange            string  `json:"weightRange"`
	PricePerKg             float64 `json:"pricePerKg"`
	AdditionalServicePrice float64 `json:"additionalServicePrice"`
}

type AuditEntryResponse struct {
	Action     string `json:"action"`
	Step       string `json:"step,omitempty"`
	FromStatus string `json:"fromStatus,omitempty"`
	ToStatus   string `json:"toStatus,omitempty"`
	Role       string `json:"role,omitempty"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	TraceID    string `json:"traceId,omitempty"`
	At         string `json:"at"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func (p PriceRequest) toEntity(id int64) entity.PricingPackage {
	return entity.PricingPackage{
		PriceID:                id,
		TransportMethod:        entity.TransportMethod(p.TransportMethod),
		WeightRange:            p.WeightRange,
		PricePerKg:             p.PricePerKg,
		AdditionalServicePrice: p.AdditionalServicePrice,
	}
}

func mapAuditEntries(entries []audit.Entry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditEntryResponse{
			Action:     string(e.Action),
			Step:       e.Step,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Role:       e.Role,
			Outcome:    string(e.Outcome),
			Error:      e.Error,
			TraceID:    e.TraceID,
			At:         e.At.UTC().Format(time.RFC3339Nano),
		}
	}
	return out
}

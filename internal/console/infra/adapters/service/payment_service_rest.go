package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
)

type PaymentServiceREST struct {
	client *Client
}

var _ ports.PaymentService = (*PaymentServiceREST)(nil)

func NewPaymentServiceREST(client *Client) *PaymentServiceREST {
	return &PaymentServiceREST{client: client}
}

func (s *PaymentServiceREST) RequestPaymentURL(ctx context.Context, orderID int64) (string, error) {
	path := fmt.Sprintf("%s/%d", s.client.paths.Payments, orderID)
	var out paymentDTO
	if _, err := s.client.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return "", fmt.Errorf("request payment url for order %d: %w", orderID, err)
	}
	if out.URL == "" {
		return "", &entity.APIError{StatusCode: http.StatusOK, Message: "payment url missing from response"}
	}
	return out.URL, nil
}

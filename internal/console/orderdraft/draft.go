// Package orderdraft is the order creation form: its fields, the price
// estimate shown while typing, and the checks that gate submission.
package orderdraft

import (
	"strings"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
)

// Draft is not safe for concurrent use; each form owns one.
type Draft struct {
	CustomerID         int64
	PickupLocation     string
	Destination        string
	TransportMethod    entity.TransportMethod
	AdditionalServices string

	weight   float64
	quantity int
	card     *entity.PricingPackage
	total    float64
	// confirmed is set once the API has priced the order.
	confirmed bool
}

func New(customerID int64) *Draft {
	return &Draft{CustomerID: customerID}
}

func (d *Draft) SetWeight(w float64) {
	d.weight = w
	d.recompute()
}

func (d *Draft) SetQuantity(q int) {
	d.quantity = q
	d.recompute()
}

// SelectCard picks the rate card used for the estimate; nil clears it. The
// card's transport method becomes the draft's.
func (d *Draft) SelectCard(card *entity.PricingPackage) {
	if card != nil {
		c := *card
		d.card = &c
		d.TransportMethod = c.TransportMethod
	} else {
		d.card = nil
	}
	d.recompute()
}

func (d *Draft) Weight() float64 { return d.weight }
func (d *Draft) Quantity() int   { return d.quantity }

func (d *Draft) Card() *entity.PricingPackage {
	if d.card == nil {
		return nil
	}
	c := *d.card
	return &c
}

// Total is the estimate until ApplyConfirmed, then the API's price.
func (d *Draft) Total() float64 { return d.total }

func (d *Draft) Confirmed() bool { return d.confirmed }

func (d *Draft) recompute() {
	d.confirmed = false
	d.total = Estimate(d.card, d.weight, d.quantity)
}

// Estimate prices an order from a rate card: pricePerKg × weight × quantity,
// or 0 without a card.
func Estimate(card *entity.PricingPackage, weight float64, quantity int) float64 {
	if card == nil {
		return 0
	}
	return card.PricePerKg * weight * float64(quantity)
}

// Validate lists every field that blocks submission.
func (d *Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.PickupLocation) == "" {
		missing = append(missing, "pickupLocation")
	}
	if strings.TrimSpace(d.Destination) == "" {
		missing = append(missing, "destination")
	}
	if !d.TransportMethod.Valid() {
		missing = append(missing, "transportMethod")
	}
	if d.weight <= 0 {
		missing = append(missing, "weight")
	}
	if d.quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return &entity.ValidationError{Fields: missing}
	}
	return nil
}

// Submission is the create request for the draft. Call Validate first.
func (d *Draft) Submission() ports.CreateOrderInput {
	in := ports.CreateOrderInput{
		CustomerID:         d.CustomerID,
		PickupLocation:     strings.TrimSpace(d.PickupLocation),
		Destination:        strings.TrimSpace(d.Destination),
		Weight:             d.weight,
		Quantity:           d.quantity,
		TransportMethod:    d.TransportMethod,
		AdditionalServices: d.AdditionalServices,
		EstimatedTotal:     d.total,
	}
	if d.card != nil {
		in.PricingID = d.card.PriceID
	}
	return in
}

// ApplyConfirmed replaces the estimate with the total the API charged.
func (d *Draft) ApplyConfirmed(order entity.Order) {
	d.total = order.Total
	d.confirmed = true
}

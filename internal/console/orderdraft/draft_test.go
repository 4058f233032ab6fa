package orderdraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

var airCard = &entity.PricingPackage{PriceID: 1, TransportMethod: entity.TransportAir, WeightRange: "0-10kg", PricePerKg: 5}

func TestTotal_RecomputedOnEveryInput(t *testing.T) {
	d := New(1)
	assert.Zero(t, d.Total())

	d.SetWeight(10)
	d.SetQuantity(2)
	assert.Zero(t, d.Total(), "no card selected")

	d.SelectCard(airCard)
	assert.Equal(t, 100.0, d.Total())

	d.SetWeight(4)
	assert.Equal(t, 40.0, d.Total())

	d.SetQuantity(3)
	assert.Equal(t, 60.0, d.Total())

	d.SelectCard(&entity.PricingPackage{PriceID: 3, TransportMethod: entity.TransportSea, PricePerKg: 2})
	assert.Equal(t, 24.0, d.Total())
	assert.Equal(t, entity.TransportSea, d.TransportMethod)

	d.SelectCard(nil)
	assert.Zero(t, d.Total())
}

func TestSubmission_RoundTrip(t *testing.T) {
	d := New(42)
	d.PickupLocation = "A"
	d.Destination = "B"
	d.SelectCard(airCard)
	d.SetWeight(10)
	d.SetQuantity(2)

	require.NoError(t, d.Validate())
	in := d.Submission()
	assert.Equal(t, int64(42), in.CustomerID)
	assert.Equal(t, int64(1), in.PricingID)
	assert.Equal(t, entity.TransportAir, in.TransportMethod)
	assert.Equal(t, 100.0, in.EstimatedTotal)
}

func TestValidate_ListsMissingFields(t *testing.T) {
	d := New(1)
	d.Destination = "  "

	err := d.Validate()
	var vErr *entity.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"pickupLocation", "destination", "transportMethod", "weight", "quantity"}, vErr.Fields)
}

func TestApplyConfirmed_ServerTotalWins(t *testing.T) {
	d := New(1)
	d.SelectCard(airCard)
	d.SetWeight(10)
	d.SetQuantity(2)

	d.ApplyConfirmed(entity.Order{ID: 5, Total: 95})
	assert.Equal(t, 95.0, d.Total())
	assert.True(t, d.Confirmed())

	d.SetQuantity(1)
	assert.False(t, d.Confirmed())
	assert.Equal(t, 50.0, d.Total())
}

func TestCard_ReturnsCopy(t *testing.T) {
	d := New(1)
	d.SelectCard(airCard)
	c := d.Card()
	c.PricePerKg = 999
	d.SetWeight(1)
	d.SetQuantity(1)
	assert.Equal(t, 5.0, d.Total())
}

package mockapi

import (
	"fmt"
	"time"
)

func seed(s *state) {
	base := time.Date(2024, time.October, 1, 8, 0, 0, 0, time.UTC)

	for _, p := range []price{
		{TransportMethod: "Air", WeightRange: "0-10kg", PricePerKg: 5, AdditionalServicePrice: 20},
		{TransportMethod: "Air", WeightRange: "10-50kg", PricePerKg: 4.5, AdditionalServicePrice: 20},
		{TransportMethod: "Sea", WeightRange: "0-100kg", PricePerKg: 2, AdditionalServicePrice: 10},
		{TransportMethod: "Land", WeightRange: "0-100kg", PricePerKg: 3, AdditionalServicePrice: 15},
	} {
		p.PriceID = s.nextPriceID
		s.nextPriceID++
		stored := p
		s.prices[p.PriceID] = &stored
	}

	statuses := []string{
		"Pending", "HealthCheck", "HealthChecked", "Packing", "Packed",
		"InTransit", "Delivered", "Canceled", "Pending", "HealthCheck",
		"Packing", "Packed",
	}
	methods := []string{"Air", "Sea", "Land"}
	for i, st := range statuses {
		o := &order{
			OrderID:         s.nextOrderID,
			CustomerID:      int64(1 + i%3),
			PickupLocation:  fmt.Sprintf("Farm %d", i+1),
			Destination:     fmt.Sprintf("Pond %d", i+1),
			Weight:          float64(5 + i),
			Quantity:        1 + i%4,
			TransportMethod: methods[i%len(methods)],
			Status:          st,
			PlacedDate:      base.Add(time.Duration(i) * 6 * time.Hour),
		}
		if card, ok := s.prices[int64(1+i%len(s.prices))]; ok {
			o.PricingID = card.PriceID
			o.Total = card.PricePerKg * o.Weight * float64(o.Quantity)
		}
		s.orders[o.OrderID] = o
		s.nextOrderID++
	}

	types := []string{"News", "Guide", "Event"}
	for i := 1; i <= 14; i++ {
		c := &content{
			ContentID:    int64(i),
			CreatedBy:    1,
			CreateByName: "Koi Staff",
			Title:        fmt.Sprintf("Koi care note %02d", i),
			Content:      "Water temperature, feeding and transport advice.",
			ContentType:  types[i%len(types)],
			Image:        fmt.Sprintf("https://img.koi.local/%d.jpg", i),
			CreatedAt:    base.Add(time.Duration(i) * 24 * time.Hour),
		}
		s.contents[c.ContentID] = c
	}
}

package entity

import "time"

// PricingPackage is one rate card row of the admin price list.
type PricingPackage struct {
	PriceID                int64           `json:"priceId"`
	TransportMethod        TransportMethod `json:"transportMethod"`
	WeightRange            string          `json:"weightRange"`
	PricePerKg             float64         `json:"pricePerKg"`
	AdditionalServicePrice float64         `json:"additionalServicePrice"`
}

// ContentItem is a CMS article shown in the blog feed.
type ContentItem struct {
	ContentID    int64      `json:"contentId"`
	CreatedBy    int64      `json:"createdBy"`
	CreateByName string     `json:"createByName"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	ContentType  string     `json:"contentType"`
	Image        string     `json:"image"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Pagination is the page metadata returned by the API. It is authoritative
// over anything the console could compute locally.
type Pagination struct {
	PageNumber   int `json:"pageNumber"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
}

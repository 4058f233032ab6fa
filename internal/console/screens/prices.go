package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/console/listquery"
	"github.com/jcmexdev/koi-console/internal/console/store"
)

var priceSortKeys = map[string]listquery.Compare[entity.PricingPackage]{
	"priceid":                listquery.ByKey(func(p entity.PricingPackage) int64 { return p.PriceID }),
	"transportmethod":        listquery.ByKey(func(p entity.PricingPackage) string { return string(p.TransportMethod) }),
	"weightrange":            listquery.ByKey(func(p entity.PricingPackage) string { return p.WeightRange }),
	"priceperkg":             listquery.ByKey(func(p entity.PricingPackage) float64 { return p.PricePerKg }),
	"additionalserviceprice": listquery.ByKey(func(p entity.PricingPackage) float64 { return p.AdditionalServicePrice }),
}

// PriceManager is the admin rate card table. The price endpoint returns the
// whole list, so search, sort and paging run locally on each fetch.
type PriceManager struct {
	*listScreen[entity.PricingPackage]
	prices ports.PriceService
}

func NewPriceManager(prices ports.PriceService, st *store.Store, opts ...listquery.Option) *PriceManager {
	fetch := func(ctx context.Context, q listquery.Query) (listquery.Result[entity.PricingPackage], error) {
		all, err := prices.ListPrices(ctx)
		if err != nil {
			return listquery.Result[entity.PricingPackage]{}, err
		}
		rows := filterPrices(all, q.Filter, q.SearchTerm)
		if cmp, ok := priceSortKeys[strings.ToLower(q.SortField)]; ok {
			listquery.SortStable(rows, cmp, q.SortDirection)
		}
		page, meta := listquery.Paginate(rows, q.PageNumber, q.PageSize)
		return listquery.Result[entity.PricingPackage]{Records: page, Pagination: meta}, nil
	}
	defaults := listquery.Query{Filter: FilterAll, PageNumber: 1, PageSize: 10}
	ls := newListScreen(NamePriceManager, st, fetch, defaults, opts...)
	ls.filterOptions = []string{FilterAll, string(entity.TransportAir), string(entity.TransportSea), string(entity.TransportLand)}
	return &PriceManager{listScreen: ls, prices: prices}
}

func filterPrices(all []entity.PricingPackage, method, term string) []entity.PricingPackage {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]entity.PricingPackage, 0, len(all))
	for _, p := range all {
		if method != "" && !strings.EqualFold(method, FilterAll) && !strings.EqualFold(method, string(p.TransportMethod)) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(string(p.TransportMethod)), term) &&
			!strings.Contains(strings.ToLower(p.WeightRange), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func validatePrice(p entity.PricingPackage) error {
	var missing []string
	if !p.TransportMethod.Valid() {
		missing = append(missing, "transportMethod")
	}
	if strings.TrimSpace(p.WeightRange) == "" {
		missing = append(missing, "weightRange")
	}
	if p.PricePerKg <= 0 {
		missing = append(missing, "pricePerKg")
	}
	if p.AdditionalServicePrice < 0 {
		missing = append(missing, "additionalServicePrice")
	}
	if len(missing) > 0 {
		return &entity.ValidationError{Fields: missing}
	}
	return nil
}

// Create, Update and Delete change nothing locally: the table shows the new
// state only once the refetch after a confirmed write lands.
func (m *PriceManager) Create(ctx context.Context, p entity.PricingPackage) (*entity.PricingPackage, error) {
	if err := validatePrice(p); err != nil {
		return nil, err
	}
	created, err := m.prices.CreatePrice(ctx, p)
	if err != nil {
		return nil, err
	}
	m.refetch(ctx)
	return created, nil
}

func (m *PriceManager) Update(ctx context.Context, p entity.PricingPackage) error {
	if p.PriceID <= 0 {
		return &entity.ValidationError{Fields: []string{"priceId"}}
	}
	if err := validatePrice(p); err != nil {
		return err
	}
	if err := m.prices.UpdatePrice(ctx, p); err != nil {
		return err
	}
	m.refetch(ctx)
	return nil
}

func (m *PriceManager) Delete(ctx context.Context, priceID int64) error {
	if err := m.prices.DeletePrice(ctx, priceID); err != nil {
		return fmt.Errorf("delete price %d: %w", priceID, err)
	}
	m.refetch(ctx)
	return nil
}

// refetch errors already show as the table's banner.
func (m *PriceManager) refetch(ctx context.Context) {
	_ = m.ctrl.Refetch(ctx)
}

package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
)

type ContentServiceREST struct {
	client *Client
}

var _ ports.ContentService = (*ContentServiceREST)(nil)

func NewContentServiceREST(client *Client) *ContentServiceREST {
	return &ContentServiceREST{client: client}
}

func (s *ContentServiceREST) ListContent(ctx context.Context, filter ports.ContentFilter) (ports.Page[entity.ContentItem], error) {
	q := url.Values{}
	if filter.SortBy != "" {
		q.Set("sortBy", filter.SortBy)
	}
	q.Set("isDescending", strconv.FormatBool(filter.Descending))
	setPaging(q, filter.PageNumber, filter.PageSize)
	if filter.ContentType != "" {
		q.Set("contentType", filter.ContentType)
	}
	if filter.SearchTerm != "" {
		q.Set("searchTerm", filter.SearchTerm)
	}

	var out []contentDTO
	pag, err := s.client.do(ctx, http.MethodGet, s.client.paths.Content, q, nil, &out)
	if err != nil {
		return ports.Page[entity.ContentItem]{}, fmt.Errorf("list content: %w", err)
	}
	items := make([]entity.ContentItem, 0, len(out))
	for _, d := range out {
		items = append(items, mapContentDTOToEntity(d))
	}
	return ports.Page[entity.ContentItem]{
		Items:      items,
		Pagination: resolvePagination(pag, filter.PageNumber, filter.PageSize, len(items)),
	}, nil
}

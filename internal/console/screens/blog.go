package screens

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/console/listquery"
	"github.com/jcmexdev/koi-console/internal/console/store"
)

func contentFetcher(svc ports.ContentService) listquery.Fetcher[entity.ContentItem] {
	return func(ctx context.Context, q listquery.Query) (listquery.Result[entity.ContentItem], error) {
		contentType := q.Filter
		if strings.EqualFold(contentType, FilterAll) {
			contentType = ""
		}
		page, err := svc.ListContent(ctx, ports.ContentFilter{
			SortBy:      q.SortField,
			Descending:  q.SortDirection == listquery.Descending,
			PageNumber:  q.PageNumber,
			PageSize:    q.PageSize,
			ContentType: contentType,
			SearchTerm:  strings.TrimSpace(q.SearchTerm),
		})
		if err != nil {
			return listquery.Result[entity.ContentItem]{}, err
		}
		return listquery.Result[entity.ContentItem]{Records: page.Items, Pagination: page.Pagination}, nil
	}
}

// BlogFeed is the public article feed.
type BlogFeed struct {
	*listScreen[entity.ContentItem]
}

func NewBlogFeed(svc ports.ContentService, st *store.Store, opts ...listquery.Option) *BlogFeed {
	defaults := listquery.Query{SortField: "CreatedAt", SortDirection: listquery.Descending, PageNumber: 1, PageSize: 6}
	return &BlogFeed{listScreen: newListScreen(NameBlogFeed, st, contentFetcher(svc), defaults, opts...)}
}

// BlogManager is the staff article list. Posts composed here stay local to
// the console: the API has no endpoint to store them.
type BlogManager struct {
	*listScreen[entity.ContentItem]

	mu     sync.Mutex
	local  []entity.ContentItem
	nextID int64
	now    func() time.Time
}

func NewBlogManager(svc ports.ContentService, st *store.Store, opts ...listquery.Option) *BlogManager {
	defaults := listquery.Query{SortField: "CreatedAt", SortDirection: listquery.Descending, PageNumber: 1, PageSize: 10}
	b := &BlogManager{
		listScreen: newListScreen(NameBlogManager, st, contentFetcher(svc), defaults, opts...),
		nextID:     -1,
		now:        time.Now,
	}
	st.OnSessionChange(b.dropLocal)
	return b
}

// dropLocal forgets the staged posts; they belong to whoever wrote them.
func (b *BlogManager) dropLocal() {
	b.mu.Lock()
	b.local = nil
	b.mu.Unlock()
}

// AddLocal stages a post on this screen only. Local posts get negative ids
// so they never collide with the API's.
func (b *BlogManager) AddLocal(author entity.UserInfo, title, body, contentType, image string) (entity.ContentItem, error) {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(body) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return entity.ContentItem{}, &entity.ValidationError{Fields: missing}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	item := entity.ContentItem{
		ContentID:    b.nextID,
		CreatedBy:    author.ID,
		CreateByName: author.Name,
		Title:        strings.TrimSpace(title),
		Content:      body,
		ContentType:  contentType,
		Image:        image,
		CreatedAt:    b.now().UTC(),
	}
	b.nextID--
	b.local = append([]entity.ContentItem{item}, b.local...)
	return item, nil
}

func (b *BlogManager) LocalPosts() []entity.ContentItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entity.ContentItem(nil), b.local...)
}

func (b *BlogManager) Snapshot() Snapshot {
	snap := b.listScreen.Snapshot()
	if local := b.LocalPosts(); len(local) > 0 {
		snap.Local = local
	}
	return snap
}

package tags

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taggraph/pkg/graphql"
)

// FindTagsQuery requests every field the graph builder consumes.
const FindTagsQuery = `query FindTags($filter: FindFilterType, $tag_filter: TagFilterType) {
  findTags(filter: $filter, tag_filter: $tag_filter) {
    count
    tags {
      id
      name
      image_path
      scene_count
      parents { id }
      children { id }
    }
  }
}`

// Doer executes a GraphQL request. *graphql.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req graphql.Request, out any) error
}

// CacheInfoDoer is a Doer that reports cache hits. *graphql.Client
// satisfies it.
type CacheInfoDoer interface {
	Doer
	DoWithCacheInfo(ctx context.Context, req graphql.Request, out any) (bool, error)
}

// Fetcher queries tags from a GraphQL endpoint.
type Fetcher struct {
	client Doer
	logger *log.Logger
}

// NewFetcher returns a Fetcher. A nil logger discards output.
func NewFetcher(client Doer, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fetcher{client: client, logger: logger}
}

type findTagsVars struct {
	Filter    FindFilter `json:"filter"`
	TagFilter *TagFilter `json:"tag_filter,omitempty"`
}

type findTagsData struct {
	FindTags *Result `json:"findTags"`
}

// FindTags returns every tag matching filter in one request.
// A nil filter selects DefaultHierarchyFilter.
//
// Errors wrap graphql.ErrNetwork, graphql.ErrMalformedResponse or are a
// *graphql.ResponseError. An empty result is not an error.
func (f *Fetcher) FindTags(ctx context.Context, filter *TagFilter) (*Result, error) {
	res, _, err := f.FindTagsWithCacheInfo(ctx, filter)
	return res, err
}

// FindTagsWithCacheInfo is FindTags that also reports whether the response
// came from the client's cache. Clients that do not implement
// CacheInfoDoer always report a miss.
func (f *Fetcher) FindTagsWithCacheInfo(ctx context.Context, filter *TagFilter) (*Result, bool, error) {
	if filter == nil {
		filter = DefaultHierarchyFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, false, err
	}

	req := graphql.Request{
		Query:     FindTagsQuery,
		Variables: findTagsVars{Filter: AllResults, TagFilter: filter},
	}
	var data findTagsData
	var hit bool
	var err error
	if cd, ok := f.client.(CacheInfoDoer); ok {
		hit, err = cd.DoWithCacheInfo(ctx, req, &data)
	} else {
		err = f.client.Do(ctx, req, &data)
	}
	if err != nil {
		return nil, false, err
	}
	if data.FindTags == nil {
		return nil, false, fmt.Errorf("%w: missing data.findTags", graphql.ErrMalformedResponse)
	}

	res := data.FindTags
	if res.Tags == nil {
		res.Tags = []Tag{}
	}
	for i, t := range res.Tags {
		if t.ID == "" {
			return nil, false, fmt.Errorf("%w: tag %d has no id", graphql.ErrMalformedResponse, i)
		}
	}
	f.logger.Debug("found tags", "count", res.Count, "returned", len(res.Tags), "cached", hit)
	return res, hit, nil
}

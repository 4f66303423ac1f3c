// Package graphql is a small typed client for GraphQL-over-HTTP endpoints.
//
// Every call is a single POST with a JSON body {query, variables}. The
// response envelope is validated before the data member is decoded into the
// caller's type:
//
//   - transport failures and unexpected statuses wrap [ErrNetwork]
//   - non-JSON bodies and missing data wrap [ErrMalformedResponse]
//   - a non-empty errors array is a [*ResponseError]
//
// Network errors, 5xx and 429 responses are retryable; the number of
// attempts is set by [Config.Retries]. Successful responses can be cached
// in any [cache.Cache] backend.
//
// # Usage
//
//	c, err := graphql.NewClient(graphql.Config{
//	    Endpoint: "http://localhost:9999/graphql",
//	    APIKey:   os.Getenv("TAGGRAPH_API_KEY"),
//	})
//	var out struct {
//	    FindTags struct{ Count int } `json:"findTags"`
//	}
//	err = c.Do(ctx, graphql.Request{Query: q}, &out)
package graphql

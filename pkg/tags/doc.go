// Package tags fetches tag hierarchy records from a GraphQL endpoint.
//
// [Fetcher.FindTags] issues a single findTags query with per_page -1 and
// returns the count and the tags, each carrying its parent and child ids.
// Filters are [TagFilter] values that serialize with the server's field
// names; [DefaultHierarchyFilter] selects tags with at least one parent or
// child. Filters can be loaded from JSON, YAML or TOML files with
// [LoadFilterFile].
package tags

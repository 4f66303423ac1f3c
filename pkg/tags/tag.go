package tags

// Ref is a reference to another tag by id.
type Ref struct {
	ID string `json:"id"`
}

// Tag is one hierarchical label as returned by findTags.
type Tag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ImagePath  string `json:"image_path"`
	SceneCount int    `json:"scene_count"`
	Parents    []Ref  `json:"parents"`
	Children   []Ref  `json:"children"`
}

// Result is the findTags envelope: the server-side count and the tags.
type Result struct {
	Count int   `json:"count"`
	Tags  []Tag `json:"tags"`
}

// IDs returns the tag ids in order.
func IDs(ts []Tag) []string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}

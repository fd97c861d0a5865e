package domain

// CategoryLookup is the sub-collection-to-category lookup artifact:
// {category_key: {title, subs: {sub_key: sub_title}}}.
type CategoryLookup map[string]*CategoryGroup

type CategoryGroup struct {
	Title string            `json:"title"`
	Subs  map[string]string `json:"subs"`
}

// SubTitleToParent inverts the lookup into sub-collection title ->
// parent category title, the join key used by the normalizer.
func (l CategoryLookup) SubTitleToParent() map[string]string {
	out := make(map[string]string)
	for _, group := range l {
		for _, subTitle := range group.Subs {
			out[subTitle] = group.Title
		}
	}
	return out
}

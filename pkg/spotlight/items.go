package spotlight

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/intl"
)

// Item is a resolved spotlight entry.
type Item struct {
	Label string
	Link  string
	Icon  string
}

func NewQuickLink(icon, trKey, link string) *QuickLink {
	return &QuickLink{trKey: trKey, icon: icon, link: link}
}

type QuickLink struct {
	trKey string
	icon  string
	link  string
}

func (i *QuickLink) Item(ctx context.Context) Item {
	return Item{Label: intl.UseTranslator(ctx).T(i.trKey), Link: i.link, Icon: i.icon}
}

type QuickLinks struct {
	items []*QuickLink
}

// Find ranks quick links and favorites against q. Favorites pointing at a
// quick link target are not listed twice. An empty query returns nothing.
func (ql *QuickLinks) Find(ctx context.Context, q string) []Item {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	candidates := make([]Item, 0, len(ql.items))
	seen := make(map[string]bool, len(ql.items))
	for _, link := range ql.items {
		it := link.Item(ctx)
		seen[it.Link] = true
		candidates = append(candidates, it)
	}
	if store, ok := composables.UseFavorites(ctx); ok {
		for _, e := range store.All() {
			if seen[e.Path] {
				continue
			}
			seen[e.Path] = true
			candidates = append(candidates, fromEntry(e))
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	words := make([]string, len(candidates))
	for i, it := range candidates {
		words[i] = it.Label
	}
	ranks := fuzzy.RankFindNormalizedFold(q, words)
	sort.Sort(ranks)

	result := make([]Item, 0, len(ranks))
	for _, rank := range ranks {
		result = append(result, candidates[rank.OriginalIndex])
	}
	return result
}

func (ql *QuickLinks) Add(links ...*QuickLink) {
	ql.items = append(ql.items, links...)
}

func (ql *QuickLinks) Len() int {
	return len(ql.items)
}

func fromEntry(e favorites.Entry) Item {
	return Item{Label: e.Name, Link: e.Path, Icon: e.Icon}
}

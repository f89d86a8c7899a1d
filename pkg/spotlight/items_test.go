package spotlight

import (
	"context"
	"testing"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/favorites"
	"github.com/iota-uz/org-console/pkg/intl"
)

func withLocalizer(t *testing.T, ctx context.Context) context.Context {
	t.Helper()
	bundle := i18n.NewBundle(language.English)
	err := bundle.AddMessages(language.English,
		&i18n.Message{ID: "NavigationLinks.Departments", Other: "Departments"},
		&i18n.Message{ID: "NavigationLinks.Positions", Other: "Positions"},
	)
	require.NoError(t, err)
	ctx = intl.WithLocale(ctx, language.English)
	return intl.WithLocalizer(ctx, i18n.NewLocalizer(bundle, "en"))
}

func TestQuickLinks_FindsTranslatedLabels(t *testing.T) {
	t.Parallel()

	ctx := withLocalizer(t, context.Background())
	links := QuickLinks{}
	links.Add(
		NewQuickLink("", "NavigationLinks.Departments", "/modules/departments"),
		NewQuickLink("", "NavigationLinks.Positions", "/modules/positions"),
	)

	found := links.Find(ctx, "dept")
	require.Len(t, found, 1)
	assert.Equal(t, "/modules/departments", found[0].Link)
	assert.Equal(t, "Departments", found[0].Label)
}

func TestQuickLinks_EmptyQueryFindsNothing(t *testing.T) {
	t.Parallel()

	ctx := withLocalizer(t, context.Background())
	links := QuickLinks{}
	links.Add(NewQuickLink("", "NavigationLinks.Positions", "/modules/positions"))
	assert.Empty(t, links.Find(ctx, "   "))
}

func TestQuickLinks_IncludesFavorites(t *testing.T) {
	t.Parallel()

	store := favorites.NewStore(favorites.NewMemorySlot(nil))
	ctx := withLocalizer(t, context.Background())
	_, err := store.Add(ctx, favorites.Item{Name: "Finance department", Path: "/modules/departments/edit/7", Type: "record"})
	require.NoError(t, err)
	_, err = store.Add(ctx, favorites.Item{Name: "Departments", Path: "/modules/departments"})
	require.NoError(t, err)
	ctx = composables.WithFavorites(ctx, store)

	links := QuickLinks{}
	links.Add(NewQuickLink("", "NavigationLinks.Departments", "/modules/departments"))

	found := links.Find(ctx, "depart")
	require.Len(t, found, 2)
	paths := []string{found[0].Link, found[1].Link}
	assert.ElementsMatch(t, []string{"/modules/departments", "/modules/departments/edit/7"}, paths)
}

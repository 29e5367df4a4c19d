package filters

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msu-tj/schedule-desk-api/internal/models"
)

func staticItems(pairs ...string) []Item {
	items := make([]Item, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, Item{Value: pairs[i], Label: pairs[i+1]})
	}
	return items
}

func TestResolveOrdersByDependencyNotDeclaration(t *testing.T) {
	// C depends on B, B depends on A, declared in reverse dependency order.
	c := Static("semester_ids", "Semester", staticItems("1", "Semester 1")).
		Dependent(func(Item, models.FilterValues) bool { return true }, "direction_ids")
	b := Static("direction_ids", "Direction", staticItems("7", "Applied Math")).
		Dependent(func(Item, models.FilterValues) bool { return true }, "faculty_ids")
	a := Static("faculty_ids", "Faculty", staticItems("3", "Mechmath"))

	schema := NewResolver(c, b, a).Resolve(nil)

	require.Len(t, schema, 3)
	assert.Equal(t, "faculty_ids", schema[0].Key)
	assert.Equal(t, "direction_ids", schema[1].Key)
	assert.Equal(t, "semester_ids", schema[2].Key)
}

func TestResolveTiesKeepDeclarationOrder(t *testing.T) {
	first := Static("faculty_ids", "Faculty", staticItems("1", "A"))
	second := Static("academic_year_ids", "Academic Year", staticItems("2", "2024/2025"))

	schema := NewResolver(first, second).Resolve(nil)

	require.Len(t, schema, 2)
	assert.Equal(t, "faculty_ids", schema[0].Key)
	assert.Equal(t, "academic_year_ids", schema[1].Key)
}

func TestResolveSuppressesZeroOptionDependents(t *testing.T) {
	faculty := Static("faculty_ids", "Faculty", staticItems("1", "Mechmath", "2", "Physics"))
	direction := Static("direction_ids", "Direction", []Item{
		{Value: "10", Label: "Applied Math", Attrs: map[string]string{"faculty_id": "1"}},
		{Value: "11", Label: "Mechanics", Attrs: map[string]string{"faculty_id": "1"}},
	}).Dependent(func(item Item, values models.FilterValues) bool {
		selected := values.Selected("faculty_ids")
		if len(selected) == 0 {
			return true
		}
		for _, id := range selected {
			if item.Attrs["faculty_id"] == id {
				return true
			}
		}
		return false
	}, "faculty_ids")

	resolver := NewResolver(faculty, direction)

	// Physics has no directions: the backing list is non-empty but the
	// predicate leaves nothing, so the entry must vanish entirely.
	schema := resolver.Resolve(models.FilterValues{"faculty_ids": {"2"}})
	require.Len(t, schema, 1)
	assert.Equal(t, "faculty_ids", schema[0].Key)

	// Same resolver, fresh values: both entries return.
	schema = resolver.Resolve(models.FilterValues{"faculty_ids": {"1"}})
	require.Len(t, schema, 2)
	assert.Len(t, schema[1].Options, 2)
}

func TestResolveSkipsFailedProviderWithoutBlockingSiblings(t *testing.T) {
	broken := EntityBacked("direction_ids", "Direction", func(context.Context) ([]Item, error) {
		return nil, errors.New("fetch failed")
	})
	healthy := Static("periods", "Period", staticItems("winter", "Winter", "summer", "Summer"))

	resolver := NewResolver(broken, healthy)
	resolver.Load(context.Background())

	schema := resolver.Resolve(nil)
	require.Len(t, schema, 1)
	assert.Equal(t, "periods", schema[0].Key)
	assert.True(t, resolver.HasError())
}

func TestResolveShowWhenEntriesAlwaysComputed(t *testing.T) {
	role := Static("user_roles", "Role", staticItems("admin", "Admin", "user", "User"))
	userType := Static("user_types", "User Type", staticItems("student", "Student", "professor", "Professor")).
		VisibleWhen("user_roles", "user")

	// No role selected: the entry is still in the schema, visibility is a
	// UI concern driven by show_when.
	schema := NewResolver(role, userType).Resolve(nil)
	require.Len(t, schema, 2)
	require.NotNil(t, schema[1].ShowWhen)
	assert.Equal(t, "user_roles", schema[1].ShowWhen.Key)
	assert.Equal(t, "user", schema[1].ShowWhen.Value)
}

func TestResolveUnloadedEntityProviderContributesNothing(t *testing.T) {
	pending := EntityBacked("faculty_ids", "Faculty", func(context.Context) ([]Item, error) {
		return staticItems("1", "Mechmath"), nil
	})

	// Load never called: the provider is still "in flight".
	schema := NewResolver(pending).Resolve(nil)
	assert.Empty(t, schema)
}

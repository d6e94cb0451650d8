package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymops/gymops/internal/roles"
)

func menuPaths(sections []MenuSection) []string {
	var out []string
	for _, s := range sections {
		for _, item := range s.Items {
			out = append(out, item.Path)
		}
	}
	return out
}

func TestBuildMenuListsOnlyAllowedStaticPages(t *testing.T) {
	e := NewEvaluator(fixtureTable(t))

	paths := menuPaths(BuildMenu(e, roles.Trainer))
	assert.Contains(t, paths, "/crm/my-leads")
	assert.Contains(t, paths, "/trainer/members/assigned")
	assert.NotContains(t, paths, "/crm/leads")
	assert.NotContains(t, paths, "/crm/inquiry")
	assert.NotContains(t, paths, "/memberships")
	assert.NotContains(t, paths, "/docs/*")

	for _, p := range paths {
		assert.Equal(t, KindAllow, e.Evaluate(Session{Role: roles.Trainer}, p).Kind, p)
	}
}

func TestBuildMenuGroupsBySection(t *testing.T) {
	sections := BuildMenu(NewEvaluator(fixtureTable(t)), roles.BranchAdmin)

	var branch *MenuSection
	for i := range sections {
		if sections[i].Path == "/branchadmin" {
			branch = &sections[i]
		}
	}
	require.NotNil(t, branch)
	assert.Equal(t, "Branchadmin", branch.Label)
	assert.Equal(t, []MenuItem{
		{Label: "General", Path: "/branchadmin/settings/general"},
		{Label: "Inventory", Path: "/branchadmin/store/inventory"},
	}, branch.Items)
}

func TestBuildMenuIndexLabel(t *testing.T) {
	sections := BuildMenu(NewEvaluator(fixtureTable(t)), roles.Staff)
	for _, s := range sections {
		if s.Path == "/memberships" {
			assert.Equal(t, "Overview", s.Items[0].Label)
			assert.Equal(t, "/memberships", s.Items[0].Path)
			return
		}
	}
	t.Fatal("memberships section missing")
}

func TestBuildMenuUnknownRole(t *testing.T) {
	e := NewEvaluator(fixtureTable(t))
	assert.Nil(t, BuildMenu(e, ""))
	assert.Nil(t, BuildMenu(e, "owner"))
	assert.Nil(t, BuildMenu(nil, roles.Staff))
}

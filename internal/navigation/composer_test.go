package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymops/gymops/internal/roles"
)

func compose(t *testing.T, role roles.Role, p string) (Composition, error) {
	t.Helper()
	e := NewEvaluator(fixtureTable(t))
	d := e.Evaluate(Session{Role: role}, p)
	return NewComposer(fixtureComponents()).Compose(d, role)
}

func TestComposeNestsLayoutsOutermostFirst(t *testing.T) {
	c, err := compose(t, roles.BranchAdmin, "/branchadmin/settings/general")
	require.NoError(t, err)

	var refs []ComponentRef
	for _, l := range c.Layers {
		refs = append(refs, l.Component)
	}
	assert.Equal(t, []ComponentRef{"Shell", "Branch", "Settings", "General"}, refs)
	assert.Len(t, c.Layouts(), 3)
	assert.Equal(t, ComponentRef("General"), c.Page().Component)
	assert.False(t, c.Page().Layout)
	assert.True(t, c.Layers[0].Layout)
	assert.Equal(t, map[string]string{PropRole: "branchadmin"}, c.Page().Props)
}

func TestComposeSuppliesParams(t *testing.T) {
	c, err := compose(t, roles.Staff, "/memberships/9001")
	require.NoError(t, err)
	assert.Equal(t, "/memberships/:membershipId", c.Pattern)
	assert.Equal(t, map[string]string{PropRole: "staff", "membershipId": "9001"}, c.Page().Props)
}

func TestComposeAliasesDifferByProps(t *testing.T) {
	network, err := compose(t, roles.SuperAdmin, "/superadmin/store/inventory")
	require.NoError(t, err)
	branch, err := compose(t, roles.BranchAdmin, "/branchadmin/store/inventory")
	require.NoError(t, err)

	assert.Equal(t, network.Page().Component, branch.Page().Component)
	assert.Equal(t, "network", network.Page().Props["scope"])
	assert.Equal(t, "branch", branch.Page().Props["scope"])
}

func TestComposeOnlyDeclaredProps(t *testing.T) {
	c, err := compose(t, roles.Member, "/dashboard")
	require.NoError(t, err)
	assert.Empty(t, c.Page().Props)
	assert.Equal(t, map[string]string{PropRole: "member"}, c.Layers[0].Props)
}

func TestComposeRejectsNonAllowDecisions(t *testing.T) {
	_, err := compose(t, roles.Member, "/memberships")
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = compose(t, roles.Member, "/missing")
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestComposeMissingProp(t *testing.T) {
	components := fixtureComponents()
	components["General"] = []string{PropRole, "branchId"}
	d := NewEvaluator(fixtureTable(t)).Evaluate(Session{Role: roles.BranchAdmin}, "/branchadmin/settings/general")

	_, err := NewComposer(components).Compose(d, roles.BranchAdmin)
	assert.ErrorIs(t, err, ErrMissingProp)
}

func TestComposeUnknownComponent(t *testing.T) {
	components := fixtureComponents()
	delete(components, "Shell")
	d := NewEvaluator(fixtureTable(t)).Evaluate(Session{Role: roles.Staff}, "/dashboard")

	_, err := NewComposer(components).Compose(d, roles.Staff)
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

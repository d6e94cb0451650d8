package navigation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gymops/gymops/internal/roles"
)

type stubComponents map[ComponentRef][]string

func (s stubComponents) Has(ref ComponentRef) bool {
	_, ok := s[ref]
	return ok
}

func (s stubComponents) Props(ref ComponentRef) ([]string, bool) {
	p, ok := s[ref]
	return p, ok
}

var (
	staffish  = roles.NewSet(roles.SuperAdmin, roles.Manager, roles.BranchAdmin, roles.Staff)
	withCoach = staffish.Union(roles.NewSet(roles.Trainer))
)

func fixtureComponents() stubComponents {
	return stubComponents{
		"Shell":       {PropRole},
		"CRMShell":    {PropRole},
		"Settings":    {PropRole},
		"Branch":      {PropRole},
		"Dashboard":   nil,
		"Memberships": {PropRole},
		"Membership":  {PropRole, "membershipId"},
		"NewMember":   {PropRole},
		"Inquiry":     {PropRole},
		"Leads":       {PropRole},
		"MyLeads":     {PropRole},
		"Conversions": {PropRole},
		"General":     {PropRole},
		"Inventory":   {PropRole, "scope"},
		"Bookings":    {PropRole},
		"Assigned":    {PropRole},
		"Docs":        {PropRole},
		"DocsIntro":   {PropRole},
		"DocsArticle": {PropRole},
	}
}

func fixtureTree() *Node {
	return &Node{
		Path:     "/",
		Roles:    roles.Anyone,
		Layout:   "Shell",
		Fallback: FallbackPolicy{Default: "/dashboard"},
		Children: []*Node{
			{Path: "", Roles: roles.Anyone, Landing: true},
			{Path: "dashboard", Roles: roles.Anyone, Page: "Dashboard"},
			{
				Path:  "memberships",
				Roles: staffish,
				Children: []*Node{
					{Path: "", Roles: staffish, Page: "Memberships"},
					{Path: "new", Roles: staffish, Page: "NewMember"},
					{Path: ":membershipId", Roles: staffish, Page: "Membership"},
				},
			},
			{
				Path:   "crm",
				Roles:  withCoach,
				Layout: "CRMShell",
				Fallback: FallbackPolicy{
					Default: "/crm/leads",
					ByRole:  map[roles.Role]string{roles.Trainer: "/crm/my-leads"},
				},
				Children: []*Node{
					{Path: "inquiry", Roles: staffish, Page: "Inquiry", Redirects: map[roles.Role]string{roles.Trainer: "/crm/my-leads"}},
					{Path: "leads", Roles: staffish, Page: "Leads"},
					{Path: "my-leads", Roles: withCoach, Page: "MyLeads"},
					{Path: "conversions", Roles: roles.NewSet(roles.SuperAdmin, roles.Manager), Page: "Conversions"},
				},
			},
			{
				Path:   "branchadmin",
				Roles:  roles.NewSet(roles.BranchAdmin),
				Layout: "Branch",
				Children: []*Node{
					{
						Path:   "settings",
						Roles:  roles.NewSet(roles.BranchAdmin),
						Layout: "Settings",
						Children: []*Node{
							{Path: "general", Roles: roles.NewSet(roles.BranchAdmin), Page: "General"},
						},
					},
					{Path: "store/inventory", Roles: roles.NewSet(roles.BranchAdmin), Page: "Inventory", Props: map[string]string{"scope": "branch"}},
				},
			},
			{
				Path:  "superadmin",
				Roles: roles.NewSet(roles.SuperAdmin),
				Children: []*Node{
					{Path: "plans/list", Roles: roles.NewSet(roles.SuperAdmin), Page: "Memberships"},
					{Path: "store/inventory", Roles: roles.NewSet(roles.SuperAdmin), Page: "Inventory", Props: map[string]string{"scope": "network"}},
				},
			},
			{
				Path:  "docs",
				Roles: roles.Anyone,
				Children: []*Node{
					{Path: "", Roles: roles.Anyone, Page: "Docs"},
					{Path: "intro", Roles: roles.Anyone, Page: "DocsIntro"},
					{Path: "*", Roles: roles.Anyone, Page: "DocsArticle"},
				},
			},
			{Path: "member/bookings", Roles: roles.NewSet(roles.Member), Page: "Bookings"},
			{Path: "trainer/members/assigned", Roles: roles.NewSet(roles.Trainer), Page: "Assigned"},
		},
	}
}

func fixtureTable(t *testing.T) *Table {
	t.Helper()
	table, err := Build(fixtureTree(), WithComponents(fixtureComponents()))
	require.NoError(t, err)
	return table
}

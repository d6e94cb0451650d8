// Package console wires the gym route table, the page registry and the HTTP
// surface that renders, redirects or reports unknown paths.
package console

import (
	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/roles"
)

// Layout shells.
const (
	AppLayout         navigation.ComponentRef = "AppLayout"
	MembershipsLayout navigation.ComponentRef = "MembershipsLayout"
	ClassesLayout     navigation.ComponentRef = "ClassesLayout"
	CRMLayout         navigation.ComponentRef = "CRMLayout"
	SettingsLayout    navigation.ComponentRef = "SettingsLayout"
	OperationsLayout  navigation.ComponentRef = "OperationsLayout"
	FacilityLayout    navigation.ComponentRef = "FacilityLayout"
	FinanceLayout     navigation.ComponentRef = "FinanceLayout"
	HRLayout          navigation.ComponentRef = "HRLayout"
	HelpLayout        navigation.ComponentRef = "HelpLayout"
	SuperadminLayout  navigation.ComponentRef = "SuperadminLayout"
	BranchLayout      navigation.ComponentRef = "BranchLayout"
	ManagerLayout     navigation.ComponentRef = "ManagerLayout"
	StaffLayout       navigation.ComponentRef = "StaffLayout"
	TrainerLayout     navigation.ComponentRef = "TrainerLayout"
	MemberLayout      navigation.ComponentRef = "MemberLayout"
)

// Pages.
const (
	Dashboard navigation.ComponentRef = "Dashboard"

	MembershipList    navigation.ComponentRef = "MembershipList"
	MembershipPlans   navigation.ComponentRef = "MembershipPlans"
	MembershipForm    navigation.ComponentRef = "MembershipForm"
	MembershipDetail  navigation.ComponentRef = "MembershipDetail"
	MembershipRenew   navigation.ComponentRef = "MembershipRenew"
	MembershipFreezes navigation.ComponentRef = "MembershipFreezes"

	ClassesOverview navigation.ComponentRef = "ClassesOverview"
	ClassSchedule   navigation.ComponentRef = "ClassSchedule"
	ClassForm       navigation.ComponentRef = "ClassForm"
	ClassAttendance navigation.ComponentRef = "ClassAttendance"
	ClassDetail     navigation.ComponentRef = "ClassDetail"

	CRMOverview navigation.ComponentRef = "CRMOverview"
	InquiryForm navigation.ComponentRef = "InquiryForm"
	LeadList    navigation.ComponentRef = "LeadList"
	LeadDetail  navigation.ComponentRef = "LeadDetail"
	MyLeads     navigation.ComponentRef = "MyLeads"
	FollowUps   navigation.ComponentRef = "FollowUps"
	Conversions navigation.ComponentRef = "Conversions"

	SettingsOverview     navigation.ComponentRef = "SettingsOverview"
	GeneralSettings      navigation.ComponentRef = "GeneralSettings"
	BranchSettings       navigation.ComponentRef = "BranchSettings"
	BillingSettings      navigation.ComponentRef = "BillingSettings"
	NotificationSettings navigation.ComponentRef = "NotificationSettings"
	IntegrationSettings  navigation.ComponentRef = "IntegrationSettings"
	OpeningHours         navigation.ComponentRef = "OpeningHours"

	OperationsOverview navigation.ComponentRef = "OperationsOverview"
	CheckIns           navigation.ComponentRef = "CheckIns"
	Lockers            navigation.ComponentRef = "Lockers"
	Equipment          navigation.ComponentRef = "Equipment"
	FeedbackBoard      navigation.ComponentRef = "FeedbackBoard"
	Incidents          navigation.ComponentRef = "Incidents"

	FacilityOverview navigation.ComponentRef = "FacilityOverview"
	Rooms            navigation.ComponentRef = "Rooms"
	Maintenance      navigation.ComponentRef = "Maintenance"

	FinanceOverview navigation.ComponentRef = "FinanceOverview"
	Invoices        navigation.ComponentRef = "Invoices"
	InvoiceDetail   navigation.ComponentRef = "InvoiceDetail"
	Payments        navigation.ComponentRef = "Payments"
	FinanceReports  navigation.ComponentRef = "FinanceReports"

	HROverview navigation.ComponentRef = "HROverview"
	Employees  navigation.ComponentRef = "Employees"
	Shifts     navigation.ComponentRef = "Shifts"
	Payroll    navigation.ComponentRef = "Payroll"

	HelpIndex      navigation.ComponentRef = "HelpIndex"
	HelpArticle    navigation.ComponentRef = "HelpArticle"
	GettingStarted navigation.ComponentRef = "GettingStarted"

	SuperadminOverview navigation.ComponentRef = "SuperadminOverview"
	BranchDirectory    navigation.ComponentRef = "BranchDirectory"
	PlanList           navigation.ComponentRef = "PlanList"
	PlanForm           navigation.ComponentRef = "PlanForm"
	StoreInventory     navigation.ComponentRef = "StoreInventory"
	NetworkReports     navigation.ComponentRef = "NetworkReports"

	BranchDashboard navigation.ComponentRef = "BranchDashboard"
	BranchStaff     navigation.ComponentRef = "BranchStaff"
	BranchMembers   navigation.ComponentRef = "BranchMembers"

	ManagerOverview   navigation.ComponentRef = "ManagerOverview"
	ManagerReports    navigation.ComponentRef = "ManagerReports"
	SalesTargets      navigation.ComponentRef = "SalesTargets"
	BranchPerformance navigation.ComponentRef = "BranchPerformance"

	StaffOverview    navigation.ComponentRef = "StaffOverview"
	StaffTasks       navigation.ComponentRef = "StaffTasks"
	FrontDeskCheckIn navigation.ComponentRef = "FrontDeskCheckIn"
	StaffSchedule    navigation.ComponentRef = "StaffSchedule"

	TrainerOverview  navigation.ComponentRef = "TrainerOverview"
	AssignedMembers  navigation.ComponentRef = "AssignedMembers"
	MemberProgress   navigation.ComponentRef = "MemberProgress"
	TrainingSessions navigation.ComponentRef = "TrainingSessions"
	WorkoutPlans     navigation.ComponentRef = "WorkoutPlans"
	DietPlans        navigation.ComponentRef = "DietPlans"

	MemberHome   navigation.ComponentRef = "MemberHome"
	MyBookings   navigation.ComponentRef = "MyBookings"
	MyProfile    navigation.ComponentRef = "MyProfile"
	MyWorkouts   navigation.ComponentRef = "MyWorkouts"
	MyPayments   navigation.ComponentRef = "MyPayments"
	MyAttendance navigation.ComponentRef = "MyAttendance"
)

// FlagshipBranchID scopes the manager's flagship performance screen.
const FlagshipBranchID = "1"

// Role sets shared across sections.
var (
	superOnly   = roles.NewSet(roles.SuperAdmin)
	leadership  = roles.NewSet(roles.SuperAdmin, roles.Manager)
	adminRoles  = roles.NewSet(roles.SuperAdmin, roles.Manager, roles.BranchAdmin)
	frontOffice = adminRoles.Union(roles.NewSet(roles.Staff))
	coaching    = frontOffice.Union(roles.NewSet(roles.Trainer))
)

// Routes declares every console path. Sections with their own sub-navigation
// are parent nodes whose layout wraps the children.
func Routes() *navigation.Node {
	return &navigation.Node{
		Path:     "/",
		Roles:    roles.Anyone,
		Layout:   AppLayout,
		Fallback: navigation.FallbackPolicy{Default: roles.DashboardPath},
		Children: []*navigation.Node{
			{Path: "", Roles: roles.Anyone, Landing: true},
			{Path: "dashboard", Roles: roles.Anyone, Page: Dashboard},
			membershipRoutes(),
			classRoutes(),
			crmRoutes(),
			settingsRoutes(),
			operationsRoutes(),
			facilityRoutes(),
			financeRoutes(),
			hrRoutes(),
			helpRoutes(),
			superadminRoutes(),
			branchAdminRoutes(),
			managerRoutes(),
			staffRoutes(),
			trainerRoutes(),
			memberRoutes(),
		},
	}
}

func membershipRoutes() *navigation.Node {
	return &navigation.Node{
		Path:     "memberships",
		Roles:    frontOffice,
		Layout:   MembershipsLayout,
		Fallback: navigation.FallbackPolicy{Default: "/memberships"},
		Children: []*navigation.Node{
			{Path: "", Roles: frontOffice, Page: MembershipList},
			{Path: "plans", Roles: frontOffice, Page: MembershipPlans},
			{Path: "new", Roles: frontOffice, Page: MembershipForm},
			{Path: "freezes", Roles: adminRoles, Page: MembershipFreezes},
			{Path: ":membershipId", Roles: frontOffice, Page: MembershipDetail},
			{Path: ":membershipId/renew", Roles: frontOffice, Page: MembershipRenew},
		},
	}
}

func classRoutes() *navigation.Node {
	return &navigation.Node{
		Path:     "classes",
		Roles:    coaching,
		Layout:   ClassesLayout,
		Fallback: navigation.FallbackPolicy{Default: "/classes/schedule"},
		Children: []*navigation.Node{
			{Path: "", Roles: coaching, Page: ClassesOverview},
			{Path: "schedule", Roles: coaching, Page: ClassSchedule},
			{Path: "new", Roles: adminRoles, Page: ClassForm},
			{Path: "attendance", Roles: coaching, Page: ClassAttendance},
			{Path: ":classId", Roles: coaching, Page: ClassDetail},
		},
	}
}

func crmRoutes() *navigation.Node {
	return &navigation.Node{
		Path:   "crm",
		Title:  "CRM",
		Roles:  coaching,
		Layout: CRMLayout,
		Fallback: navigation.FallbackPolicy{
			Default: "/crm/leads",
			ByRole:  map[roles.Role]string{roles.Trainer: "/crm/my-leads"},
		},
		Children: []*navigation.Node{
			{Path: "", Roles: frontOffice, Page: CRMOverview},
			{
				Path:      "inquiry",
				Roles:     frontOffice,
				Page:      InquiryForm,
				Redirects: map[roles.Role]string{roles.Trainer: "/crm/my-leads"},
			},
			{Path: "leads", Roles: frontOffice, Page: LeadList},
			{Path: "leads/:leadId", Roles: coaching, Page: LeadDetail},
			{Path: "my-leads", Roles: coaching, Page: MyLeads},
			{Path: "follow-ups", Roles: coaching, Page: FollowUps},
			{Path: "conversions", Roles: leadership, Page: Conversions},
		},
	}
}

func settingsSection(roleSet roles.Set, fallback string, extra ...*navigation.Node) *navigation.Node {
	children := []*navigation.Node{
		{Path: "", Roles: roleSet, Page: SettingsOverview},
		{Path: "general", Roles: roleSet, Page: GeneralSettings},
	}
	return &navigation.Node{
		Path:     "settings",
		Roles:    roleSet,
		Layout:   SettingsLayout,
		Fallback: navigation.FallbackPolicy{Default: fallback},
		Children: append(children, extra...),
	}
}

func settingsRoutes() *navigation.Node {
	return settingsSection(adminRoles, "/settings/general",
		&navigation.Node{Path: "branches", Roles: leadership, Page: BranchSettings},
		&navigation.Node{Path: "billing", Roles: superOnly, Page: BillingSettings},
		&navigation.Node{Path: "notifications", Roles: adminRoles, Page: NotificationSettings},
		&navigation.Node{Path: "integrations", Roles: superOnly, Page: IntegrationSettings},
	)
}

func operationsRoutes() *navigation.Node {
	return &navigation.Node{
		Path:     "operations",
		Roles:    frontOffice,
		Layout:   OperationsLayout,
		Fallback: navigation.FallbackPolicy{Default: "/operations/check-ins"},
		Children: []*navigation.Node{
			{Path: "", Roles: frontOffice, Page: OperationsOverview},
			{Path: "check-ins", Roles: frontOffice, Page: CheckIns},
			{Path: "lockers", Roles: frontOffice, Page: Lockers},
			{Path: "equipment", Roles: adminRoles, Page: Equipment},
			{Path: "feedback", Roles: frontOffice, Page: FeedbackBoard},
			{Path: "incidents", Roles: frontOffice, Page: Incidents},
		},
	}
}

func facilityRoutes() *navigation.Node {
	return &navigation.Node{
		Path:   "facility",
		Roles:  adminRoles,
		Layout: FacilityLayout,
		Children: []*navigation.Node{
			{Path: "", Roles: adminRoles, Page: FacilityOverview},
			{Path: "rooms", Roles: adminRoles, Page: Rooms},
			{Path: "maintenance", Roles: adminRoles, Page: Maintenance},
		},
	}
}

func financeRoutes() *navigation.Node {
	return &navigation.Node{
		Path:     "finance",
		Roles:    adminRoles,
		Layout:   FinanceLayout,
		Fallback: navigation.FallbackPolicy{Default: "/finance/invoices"},
		Children: []*navigation.Node{
			{Path: "", Roles: leadership, Page: FinanceOverview},
			{Path: "invoices", Roles: adminRoles, Page: Invoices},
			{Path: "invoices/:invoiceId", Roles: adminRoles, Page: InvoiceDetail},
			{Path: "payments", Roles: adminRoles, Page: Payments},
			{Path: "reports", Roles: leadership, Page: FinanceReports},
		},
	}
}

func hrRoutes() *navigation.Node {
	return &navigation.Node{
		Path:     "hr",
		Title:    "HR",
		Roles:    adminRoles,
		Layout:   HRLayout,
		Fallback: navigation.FallbackPolicy{Default: "/hr/employees"},
		Children: []*navigation.Node{
			{Path: "", Roles: adminRoles, Page: HROverview},
			{Path: "employees", Roles: adminRoles, Page: Employees},
			{Path: "shifts", Roles: adminRoles, Page: Shifts},
			{Path: "payroll", Roles: leadership, Page: Payroll},
		},
	}
}

func helpRoutes() *navigation.Node {
	return &navigation.Node{
		Path:   "help",
		Roles:  roles.Anyone,
		Layout: HelpLayout,
		Children: []*navigation.Node{
			{Path: "", Roles: roles.Anyone, Page: HelpIndex},
			{Path: "getting-started", Roles: roles.Anyone, Page: GettingStarted},
			{Path: "*", Roles: roles.Anyone, Page: HelpArticle},
		},
	}
}

func superadminRoutes() *navigation.Node {
	return &navigation.Node{
		Path:   "superadmin",
		Title:  "Super Admin",
		Roles:  superOnly,
		Layout: SuperadminLayout,
		Children: []*navigation.Node{
			{Path: "", Roles: superOnly, Page: SuperadminOverview},
			{Path: "branches", Roles: superOnly, Page: BranchDirectory},
			{Path: "plans/list", Roles: superOnly, Page: PlanList},
			{Path: "plans/new", Roles: superOnly, Page: PlanForm},
			{Path: "store/inventory", Roles: superOnly, Page: StoreInventory, Props: map[string]string{"scope": "network"}},
			{Path: "reports", Roles: superOnly, Page: NetworkReports},
		},
	}
}

func branchAdminRoutes() *navigation.Node {
	branchAdmin := roles.NewSet(roles.BranchAdmin)
	settings := settingsSection(branchAdmin, "/branchadmin/settings/general",
		&navigation.Node{Path: "hours", Roles: branchAdmin, Page: OpeningHours},
	)
	return &navigation.Node{
		Path:   "branchadmin",
		Title:  "Branch Admin",
		Roles:  branchAdmin,
		Layout: BranchLayout,
		Children: []*navigation.Node{
			{Path: "", Roles: branchAdmin, Page: BranchDashboard},
			settings,
			{Path: "store/inventory", Roles: branchAdmin, Page: StoreInventory, Props: map[string]string{"scope": "branch"}},
			{Path: "operations/feedback", Roles: branchAdmin, Page: FeedbackBoard},
			{Path: "staff", Roles: branchAdmin, Page: BranchStaff},
			{Path: "members", Roles: branchAdmin, Page: BranchMembers},
		},
	}
}

func managerRoutes() *navigation.Node {
	manager := roles.NewSet(roles.Manager)
	return &navigation.Node{
		Path:   "manager",
		Roles:  manager,
		Layout: ManagerLayout,
		Children: []*navigation.Node{
			{Path: "", Roles: manager, Page: ManagerOverview},
			{Path: "reports", Roles: manager, Page: ManagerReports},
			{Path: "targets", Roles: manager, Page: SalesTargets},
			{Path: "branches/flagship", Roles: manager, Page: BranchPerformance, Props: map[string]string{"branchId": FlagshipBranchID}},
			{Path: "branches/:branchId", Roles: manager, Page: BranchPerformance},
		},
	}
}

func staffRoutes() *navigation.Node {
	staff := roles.NewSet(roles.Staff)
	return &navigation.Node{
		Path:   "staff",
		Roles:  staff,
		Layout: StaffLayout,
		Children: []*navigation.Node{
			{Path: "", Roles: staff, Page: StaffOverview},
			{Path: "tasks", Roles: staff, Page: StaffTasks},
			{Path: "check-in", Roles: staff, Page: FrontDeskCheckIn},
			{Path: "schedule", Roles: staff, Page: StaffSchedule},
		},
	}
}

func trainerRoutes() *navigation.Node {
	trainer := roles.NewSet(roles.Trainer)
	return &navigation.Node{
		Path:   "trainer",
		Roles:  trainer,
		Layout: TrainerLayout,
		Children: []*navigation.Node{
			{Path: "", Roles: trainer, Page: TrainerOverview},
			{Path: "members/assigned", Roles: trainer, Page: AssignedMembers},
			{Path: "members/:memberId", Roles: trainer, Page: MemberProgress},
			{Path: "sessions", Roles: trainer, Page: TrainingSessions},
			{Path: "workouts", Roles: trainer, Page: WorkoutPlans},
			{Path: "diet-plans", Roles: trainer, Page: DietPlans},
		},
	}
}

func memberRoutes() *navigation.Node {
	member := roles.NewSet(roles.Member)
	return &navigation.Node{
		Path:   "member",
		Roles:  member,
		Layout: MemberLayout,
		Children: []*navigation.Node{
			{Path: "", Roles: member, Page: MemberHome},
			{Path: "bookings", Roles: member, Page: MyBookings},
			{Path: "profile", Roles: member, Page: MyProfile},
			{Path: "workouts", Roles: member, Page: MyWorkouts},
			{Path: "payments", Roles: member, Page: MyPayments},
			{Path: "attendance", Roles: member, Page: MyAttendance},
		},
	}
}

// NewTable builds the console route table checked against the registry.
func NewTable(registry *Registry) (*navigation.Table, error) {
	return navigation.Build(Routes(), navigation.WithComponents(registry))
}

package console

import (
	"fmt"
	"sort"

	"github.com/gymops/gymops/internal/navigation"
)

// Templates used by the generic component renderers.
const (
	TemplateAppLayout     = "layouts/app.html"
	TemplateSectionLayout = "layouts/section.html"
	TemplateScreen        = "pages/screen.html"
)

// Component describes a renderable page or layout shell.
type Component struct {
	Name     navigation.ComponentRef
	Title    string
	Template string
	Props    []string
}

// Registry maps component references to their definitions.
type Registry struct {
	components map[navigation.ComponentRef]Component
}

// NewRegistry builds a Registry, rejecting duplicate names.
func NewRegistry(components ...Component) (*Registry, error) {
	r := &Registry{components: make(map[navigation.ComponentRef]Component, len(components))}
	for _, c := range components {
		if c.Name == "" {
			return nil, fmt.Errorf("console: component without name")
		}
		if _, dup := r.components[c.Name]; dup {
			return nil, fmt.Errorf("console: duplicate component %s", c.Name)
		}
		if c.Template == "" {
			c.Template = TemplateScreen
		}
		r.components[c.Name] = c
	}
	return r, nil
}

// Has implements navigation.ComponentSet.
func (r *Registry) Has(ref navigation.ComponentRef) bool {
	_, ok := r.components[ref]
	return ok
}

// Props implements navigation.PropDeclarer.
func (r *Registry) Props(ref navigation.ComponentRef) ([]string, bool) {
	c, ok := r.components[ref]
	if !ok {
		return nil, false
	}
	return c.Props, true
}

// Lookup returns the component definition.
func (r *Registry) Lookup(ref navigation.ComponentRef) (Component, bool) {
	c, ok := r.components[ref]
	return c, ok
}

// Names lists registered components in lexical order.
func (r *Registry) Names() []navigation.ComponentRef {
	out := make([]navigation.ComponentRef, 0, len(r.components))
	for name := range r.components {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func layout(name navigation.ComponentRef, title string) Component {
	tpl := TemplateSectionLayout
	if name == AppLayout {
		tpl = TemplateAppLayout
	}
	return Component{Name: name, Title: title, Template: tpl, Props: []string{navigation.PropRole}}
}

func page(name navigation.ComponentRef, title string, props ...string) Component {
	return Component{Name: name, Title: title, Template: TemplateScreen, Props: append([]string{navigation.PropRole}, props...)}
}

// DefaultComponents is the console's page registry.
func DefaultComponents() []Component {
	return []Component{
		layout(AppLayout, "GymOps"),
		layout(MembershipsLayout, "Memberships"),
		layout(ClassesLayout, "Classes"),
		layout(CRMLayout, "CRM"),
		layout(SettingsLayout, "Settings"),
		layout(OperationsLayout, "Operations"),
		layout(FacilityLayout, "Facility"),
		layout(FinanceLayout, "Finance"),
		layout(HRLayout, "HR"),
		layout(HelpLayout, "Help"),
		layout(SuperadminLayout, "Super Admin"),
		layout(BranchLayout, "Branch Admin"),
		layout(ManagerLayout, "Manager"),
		layout(StaffLayout, "Staff"),
		layout(TrainerLayout, "Trainer"),
		layout(MemberLayout, "Member"),

		page(Dashboard, "Dashboard"),

		page(MembershipList, "Memberships"),
		page(MembershipPlans, "Membership Plans"),
		page(MembershipForm, "New Membership"),
		page(MembershipDetail, "Membership", "membershipId"),
		page(MembershipRenew, "Renew Membership", "membershipId"),
		page(MembershipFreezes, "Membership Freezes"),

		page(ClassesOverview, "Classes"),
		page(ClassSchedule, "Class Schedule"),
		page(ClassForm, "New Class"),
		page(ClassAttendance, "Class Attendance"),
		page(ClassDetail, "Class", "classId"),

		page(CRMOverview, "CRM"),
		page(InquiryForm, "New Inquiry"),
		page(LeadList, "Leads"),
		page(LeadDetail, "Lead", "leadId"),
		page(MyLeads, "My Leads"),
		page(FollowUps, "Follow-ups"),
		page(Conversions, "Conversions"),

		page(SettingsOverview, "Settings"),
		page(GeneralSettings, "General Settings"),
		page(BranchSettings, "Branch Settings"),
		page(BillingSettings, "Billing"),
		page(NotificationSettings, "Notifications"),
		page(IntegrationSettings, "Integrations"),
		page(OpeningHours, "Opening Hours"),

		page(OperationsOverview, "Operations"),
		page(CheckIns, "Check-ins"),
		page(Lockers, "Lockers"),
		page(Equipment, "Equipment"),
		page(FeedbackBoard, "Feedback"),
		page(Incidents, "Incidents"),

		page(FacilityOverview, "Facility"),
		page(Rooms, "Rooms"),
		page(Maintenance, "Maintenance"),

		page(FinanceOverview, "Finance"),
		page(Invoices, "Invoices"),
		page(InvoiceDetail, "Invoice", "invoiceId"),
		page(Payments, "Payments"),
		page(FinanceReports, "Finance Reports"),

		page(HROverview, "HR"),
		page(Employees, "Employees"),
		page(Shifts, "Shifts"),
		page(Payroll, "Payroll"),

		page(HelpIndex, "Help"),
		page(HelpArticle, "Help Article"),
		page(GettingStarted, "Getting Started"),

		page(SuperadminOverview, "Network Overview"),
		page(BranchDirectory, "Branches"),
		page(PlanList, "Plans"),
		page(PlanForm, "New Plan"),
		page(StoreInventory, "Store Inventory", "scope"),
		page(NetworkReports, "Network Reports"),

		page(BranchDashboard, "Branch Dashboard"),
		page(BranchStaff, "Branch Staff"),
		page(BranchMembers, "Branch Members"),

		page(ManagerOverview, "Manager Overview"),
		page(ManagerReports, "Reports"),
		page(SalesTargets, "Sales Targets"),
		page(BranchPerformance, "Branch Performance", "branchId"),

		page(StaffOverview, "Staff Overview"),
		page(StaffTasks, "Tasks"),
		page(FrontDeskCheckIn, "Front Desk Check-in"),
		page(StaffSchedule, "My Schedule"),

		page(TrainerOverview, "Trainer Overview"),
		page(AssignedMembers, "Assigned Members"),
		page(MemberProgress, "Member Progress", "memberId"),
		page(TrainingSessions, "Sessions"),
		page(WorkoutPlans, "Workout Plans"),
		page(DietPlans, "Diet Plans"),

		page(MemberHome, "Home"),
		page(MyBookings, "My Bookings"),
		page(MyProfile, "My Profile"),
		page(MyWorkouts, "My Workouts"),
		page(MyPayments, "My Payments"),
		page(MyAttendance, "My Attendance"),
	}
}

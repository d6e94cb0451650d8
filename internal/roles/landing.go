package roles

// DashboardPath is the shared landing page of the console shell.
const DashboardPath = "/dashboard"

var landings = map[Role]string{
	Member:  "/member/bookings",
	Trainer: "/trainer/members/assigned",
}

// DefaultLanding returns the page a role lands on after login or when no
// section-local fallback applies. Unknown roles have no landing.
func DefaultLanding(r Role) (string, bool) {
	if !r.Valid() {
		return "", false
	}
	if p, ok := landings[r]; ok {
		return p, true
	}
	return DashboardPath, true
}

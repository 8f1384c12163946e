package models

// Session is the per-request authentication context.
type Session struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// AnonymousSession is the session of a request without valid credentials.
func AnonymousSession() Session {
	return Session{Authenticated: false}
}

// NewSession returns an authenticated session for user.
func NewSession(user *User) Session {
	return Session{Authenticated: user != nil, User: user}
}

// CanAccess reports whether the session may open a page tagged with role.
func (s Session) CanAccess(role string) bool {
	return s.Authenticated && s.User.HasRole(role)
}

// MenuItem is one navigation entry.
type MenuItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

var managerMenu = []MenuItem{
	{Key: "dashboard", Label: "Dashboard", Path: "/dashboard/manager"},
	{Key: "schools", Label: "Schools", Path: "/schools"},
	{Key: "employees", Label: "Employees", Path: "/employees"},
	{Key: "schedule", Label: "Schedule", Path: "/activities"},
	{Key: "equipment", Label: "Equipment", Path: "/equipment"},
	{Key: "finance", Label: "Finance", Path: "/finance"},
	{Key: "import", Label: "Import", Path: "/import"},
}

var employeeMenu = []MenuItem{
	{Key: "my_dashboard", Label: "My dashboard", Path: "/dashboard/employee"},
	{Key: "my_schedule", Label: "My schedule", Path: "/activities"},
	{Key: "equipment_reports", Label: "Equipment reports", Path: "/equipment-reports/mine"},
}

// MenuFor returns the navigation allowed for role.
func MenuFor(role string) []MenuItem {
	switch role {
	case RoleManager:
		return append([]MenuItem(nil), managerMenu...)
	case RoleEmployee:
		return append([]MenuItem(nil), employeeMenu...)
	default:
		return []MenuItem{}
	}
}

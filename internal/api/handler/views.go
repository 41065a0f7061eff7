package handler

// View is a guarded console page. A user may open it when they hold any
// one of Permissions; an empty list only requires a login.
type View struct {
	Path        string
	Name        string
	Title       string
	Permissions []string
	// InNavigation lists the view in the console sidebar.
	InNavigation bool
}

// Views is the console route table.
var Views = []View{
	{Path: "/", Name: "dashboard", Title: "Dashboard"},
	{Path: "/dashboard", Name: "dashboard", Title: "Dashboard", InNavigation: true},
	{Path: "/orders", Name: "orders", Title: "Orders", Permissions: []string{"orders:read"}, InNavigation: true},
	{Path: "/orders/create", Name: "orders-create", Title: "Create Order", Permissions: []string{"orders:create"}},
	{Path: "/customers", Name: "customers", Title: "Customers", Permissions: []string{"customers:read"}, InNavigation: true},
	{Path: "/customers/create", Name: "customers-create", Title: "Create Customer", Permissions: []string{"customers:create"}},
	{Path: "/application-admin", Name: "application-admin", Title: "Application Inbox", Permissions: []string{"app_admin:read"}, InNavigation: true},
	{Path: "/escalations", Name: "escalations", Title: "Escalations", Permissions: []string{"escalations:read"}, InNavigation: true},
	{Path: "/onboarding", Name: "onboarding", Title: "Customer Onboarding", Permissions: []string{"onboarding:read"}, InNavigation: true},
	{Path: "/fno", Name: "fno", Title: "FNO Management", Permissions: []string{"fno:read"}, InNavigation: true},
	{Path: "/reports", Name: "reports", Title: "Reports", Permissions: []string{"reports:read"}, InNavigation: true},
	{Path: "/users", Name: "users", Title: "User Management", Permissions: []string{"admin:users"}, InNavigation: true},
	{Path: "/settings", Name: "settings", Title: "System Settings", Permissions: []string{"admin:settings"}, InNavigation: true},
}

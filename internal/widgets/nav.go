package widgets

const (
	ShellTitle    = "Harara Dashboard"
	ShellSubtitle = "Heatwave Monitoring"
)

// NavItem is one sidebar link.
type NavItem struct {
	Name   string
	Href   string
	Active bool
}

var navItems = []NavItem{
	{Name: "Dashboard", Href: "/"},
	{Name: "Predictions", Href: "/predictions"},
	{Name: "Alerts", Href: "/alerts"},
	{Name: "Users", Href: "/users"},
	{Name: "Export", Href: "/export"},
	{Name: "Settings", Href: "/settings"},
}

// Nav returns the sidebar items with the one matching path marked active.
// Logout is rendered separately as a form post.
func Nav(path string) []NavItem {
	items := make([]NavItem, len(navItems))
	for i, item := range navItems {
		item.Active = item.Href == path
		items[i] = item
	}
	return items
}

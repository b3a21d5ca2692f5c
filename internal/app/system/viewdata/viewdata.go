// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/theme"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/gorilla/csrf"
)

// SiteName is shown in page titles and the header.
const SiteName = "ECAHub"

// NavLink is one entry in the dashboard sidebar.
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, rc, "Page Title"),
//	}
type BaseVM struct {
	SiteName string
	Title    string

	IsLoggedIn bool
	Role       models.Role
	RoleLabel  string
	UserName   string

	// ThemeStyle is the CSS custom-property block for the applied theme.
	ThemeStyle template.CSS
	Nav        []NavLink

	CurrentPath string
	CSRFToken   string
}

// NewBaseVM builds the shared page fields from an explicit role context.
// A nil rc produces the anonymous view with the default theme.
func NewBaseVM(r *http.Request, rc *auth.RoleContext, title string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		RoleLabel:   models.Role("").Label(),
		ThemeStyle:  theme.Style(models.DefaultTheme()),
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.Token(r),
	}
	if rc == nil {
		return vm
	}

	vm.IsLoggedIn = true
	vm.Role = rc.UserRole
	vm.RoleLabel = rc.UserRole.Label()
	vm.UserName = rc.UserName
	if rc.Theme != (models.Theme{}) {
		vm.ThemeStyle = theme.Style(rc.Theme)
	}
	vm.Nav = NavFor(rc.UserRole, r.URL.Path)
	return vm
}

// NavFor lists the dashboard pages role can open.
func NavFor(role models.Role, current string) []NavLink {
	links := []NavLink{
		{Label: "Dashboard", Href: "/dashboard"},
		{Label: "Messages", Href: "/dashboard/messages"},
		{Label: "Trainings", Href: "/dashboard/trainings"},
	}
	switch role {
	case models.RoleSuperAdmin:
		links = append(links, NavLink{Label: "Schools", Href: "/dashboard/schools"})
	case models.RoleSchool:
		links = append(links, NavLink{Label: "Students", Href: "/dashboard/students"})
	}
	for i := range links {
		links[i].Active = links[i].Href == current
	}
	return links
}

package ui

import (
	"github.com/trypromptly/promptly-cli/internal/api"
	"github.com/trypromptly/promptly-cli/internal/router"
)

// MenuItem is one navigation entry. External entries open outside the console.
type MenuItem struct {
	Label    string
	Path     string
	External bool
}

// fixedMenu is shown in both navigation modes, in this order
var fixedMenu = []MenuItem{
	{Label: "Apps", Path: router.PathApps},
	{Label: "Playground", Path: router.PathPlayground},
	{Label: "Discover", Path: router.PathHub},
	{Label: "Endpoints", Path: router.PathEndpoints},
	{Label: "Data", Path: router.PathData},
	{Label: "History", Path: router.PathHistory},
	{Label: "Settings", Path: router.PathSettings},
}

var organizationItem = MenuItem{Label: "Organization", Path: router.PathOrganization}

// MenuItems composes the navigation. Compact mode appends the Docs link
// before the Organization entry; expanded mode has no Docs link. The
// Organization entry is present only for organization owners.
func MenuItems(flags api.ProfileFlags, compact bool, docsURL string) []MenuItem {
	items := make([]MenuItem, 0, len(fixedMenu)+2)
	items = append(items, fixedMenu...)
	if compact && docsURL != "" {
		items = append(items, MenuItem{Label: "Docs", Path: docsURL, External: true})
	}
	if flags.IsOrganizationOwner() {
		items = append(items, organizationItem)
	}
	return items
}

// activeIndex returns the entry matching the current path, or -1
func activeIndex(items []MenuItem, currentPath string) int {
	for i, item := range items {
		if !item.External && item.Path == currentPath {
			return i
		}
	}
	return -1
}

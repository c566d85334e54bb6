package testutil

import (
	"architect/models"
)

// CreateTestLayout returns a small valid layout with one role and one
// category holding a text channel
func CreateTestLayout() models.Layout {
	layout := models.Layout{
		Mode: models.LayoutModeUpdate,
		Roles: []models.RoleSpec{
			{Name: "Mod", Color: "#5865f2"},
		},
		Categories: []models.CategorySpec{
			{
				Name: "General",
				Channels: []models.ChannelSpec{
					{Name: "chat", Type: models.ChannelTypeText},
				},
			},
		},
	}
	return layout
}

// CreateTestLayoutWithRoles returns a layout containing only the named roles
func CreateTestLayoutWithRoles(names ...string) models.Layout {
	layout := models.Layout{Mode: models.LayoutModeUpdate}
	for _, name := range names {
		layout.Roles = append(layout.Roles, models.RoleSpec{Name: name})
	}
	return layout
}

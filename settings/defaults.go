package settings

import (
	"github.com/folio-cms/folio/storage/model"
)

func ptr(s string) *string {
	return &s
}

// DefaultSettings returns the settings a fresh installation is seeded with.
// A new slice is returned on every call.
func DefaultSettings() []model.Setting {
	return []model.Setting{
		// general
		{
			Key:             "site.name",
			Value:           ptr("Folio"),
			Type:            model.SettingTypeString,
			Group:           "general",
			Description:     "Website name/title",
			IsPublic:        true,
			ValidationRules: []string{"required", "string", "max:255"},
			SortOrder:       1,
			IsLocked:        true,
		},
		{
			Key:             "site.tagline",
			Value:           ptr("Full-Stack Developer & Digital Innovator"),
			Type:            model.SettingTypeString,
			Group:           "general",
			Description:     "Site tagline or subtitle",
			IsPublic:        true,
			ValidationRules: []string{"string", "max:500"},
			SortOrder:       2,
		},
		{
			Key:             "site.description",
			Value:           ptr("Personal portfolio and blog, showcasing full-stack development projects and technical insights."),
			Type:            model.SettingTypeString,
			Group:           "general",
			Description:     "Site meta description",
			IsPublic:        true,
			ValidationRules: []string{"string", "max:1000"},
			SortOrder:       3,
		},
		{
			Key:             "site.keywords",
			Value:           ptr("Full-stack developer, Go, JavaScript, Web Development"),
			Type:            model.SettingTypeString,
			Group:           "general",
			Description:     "Site meta keywords",
			IsPublic:        true,
			ValidationRules: []string{"string", "max:500"},
			SortOrder:       4,
		},
		{
			Key:             "site.logo",
			Type:            model.SettingTypeImage,
			Group:           "general",
			Description:     "Site logo image",
			IsPublic:        true,
			ValidationRules: []string{"image", "max:2048"},
			SortOrder:       5,
		},
		{
			Key:             "site.favicon",
			Value:           ptr(DefaultFavicon),
			Type:            model.SettingTypeFile,
			Group:           "general",
			Description:     "Site favicon",
			IsPublic:        true,
			ValidationRules: []string{"file", "max:1024"},
			SortOrder:       6,
		},

		// contact
		{
			Key:             "contact.email",
			Value:           ptr("hello@example.com"),
			Type:            model.SettingTypeEmail,
			Group:           "contact",
			Description:     "Main contact email address",
			IsPublic:        true,
			ValidationRules: []string{"email"},
			SortOrder:       1,
		},
		{
			Key:             "contact.phone",
			Type:            model.SettingTypeString,
			Group:           "contact",
			Description:     "Contact phone number",
			ValidationRules: []string{"string", "max:50"},
			SortOrder:       2,
		},
		{
			Key:             "contact.address",
			Value:           ptr("Netherlands"),
			Type:            model.SettingTypeString,
			Group:           "contact",
			Description:     "Contact address/location",
			IsPublic:        true,
			ValidationRules: []string{"string", "max:500"},
			SortOrder:       3,
		},

		// social
		{
			Key:             "social.github",
			Value:           ptr("https://github.com/"),
			Type:            model.SettingTypeURL,
			Group:           "social",
			Description:     "GitHub profile URL",
			IsPublic:        true,
			ValidationRules: []string{"url"},
			SortOrder:       1,
		},
		{
			Key:             "social.linkedin",
			Value:           ptr("https://linkedin.com/in/"),
			Type:            model.SettingTypeURL,
			Group:           "social",
			Description:     "LinkedIn profile URL",
			IsPublic:        true,
			ValidationRules: []string{"url"},
			SortOrder:       2,
		},
		{
			Key:             "social.twitter",
			Value:           ptr("https://x.com/"),
			Type:            model.SettingTypeURL,
			Group:           "social",
			Description:     "Twitter/X profile URL",
			IsPublic:        true,
			ValidationRules: []string{"url"},
			SortOrder:       3,
		},

		// seo
		{
			Key:             "seo.robots_txt",
			Value:           ptr("User-agent: *\nDisallow:"),
			Type:            model.SettingTypeString,
			Group:           "seo",
			Description:     "Robots.txt content",
			ValidationRules: []string{"string"},
			SortOrder:       3,
		},

		// appearance
		{
			Key:             "appearance.theme",
			Value:           ptr(DefaultTheme),
			Type:            model.SettingTypeString,
			Group:           "appearance",
			Description:     "Default theme (light, dark, auto)",
			IsPublic:        true,
			ValidationRules: []string{"in:light,dark,auto"},
			SortOrder:       1,
		},
		{
			Key:             "appearance.primary_color",
			Value:           ptr(DefaultPrimaryColor),
			Type:            model.SettingTypeString,
			Group:           "appearance",
			Description:     "Primary brand color",
			IsPublic:        true,
			ValidationRules: []string{"string", "regex:/^#[0-9A-Fa-f]{6}$/"},
			SortOrder:       2,
		},
		{
			Key:             "appearance.hero_background",
			Type:            model.SettingTypeImage,
			Group:           "appearance",
			Description:     "Hero section background image",
			IsPublic:        true,
			ValidationRules: []string{"image", "max:5120"},
			SortOrder:       3,
		},

		// features
		{
			Key:             "features.blog_enabled",
			Value:           ptr("1"),
			Type:            model.SettingTypeBoolean,
			Group:           "features",
			Description:     "Enable blog functionality",
			ValidationRules: []string{"boolean"},
			SortOrder:       1,
		},
		{
			Key:             "features.contact_form_enabled",
			Value:           ptr("1"),
			Type:            model.SettingTypeBoolean,
			Group:           "features",
			Description:     "Enable contact form",
			IsPublic:        true,
			ValidationRules: []string{"boolean"},
			SortOrder:       2,
		},
		{
			Key:             "features.projects_per_page",
			Value:           ptr("6"),
			Type:            model.SettingTypeInteger,
			Group:           "features",
			Description:     "Number of projects to show per page",
			ValidationRules: []string{"integer", "min:1", "max:50"},
			SortOrder:       3,
		},
	}
}

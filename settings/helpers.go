package settings

import (
	"context"
)

// Fallbacks used by the domain helpers when a setting is not stored
const (
	DefaultFavicon         = "/favicon.ico"
	DefaultTheme           = "auto"
	DefaultPrimaryColor    = "#3b82f6"
	DefaultProjectsPerPage = int64(6)
)

// projection is a fixed set of result names mapped to setting keys and defaults
type projection []struct {
	name string
	key  string
	def  any
}

func (s *Service) project(ctx context.Context, p projection) (map[string]any, error) {
	values := make(map[string]any, len(p))
	for _, f := range p {
		v, err := s.Get(ctx, f.key, f.def)
		if err != nil {
			return nil, err
		}
		values[f.name] = v
	}
	return values, nil
}

// GetSiteConfig returns the site metadata used for page meta tags
func (s *Service) GetSiteConfig(ctx context.Context) (map[string]any, error) {
	return s.project(
		ctx, projection{
			{"name", "site.name", s.appName},
			{"description", "site.description", nil},
			{"keywords", "site.keywords", nil},
			{"logo", "site.logo", nil},
			{"favicon", "site.favicon", DefaultFavicon},
			{"tagline", "site.tagline", nil},
		},
	)
}

// GetContactInfo returns the contact information
func (s *Service) GetContactInfo(ctx context.Context) (map[string]any, error) {
	return s.project(
		ctx, projection{
			{"email", "contact.email", nil},
			{"phone", "contact.phone", nil},
			{"address", "contact.address", nil},
		},
	)
}

// GetSocialLinks returns the configured social profile links; unset links
// are left out.
func (s *Service) GetSocialLinks(ctx context.Context) (map[string]any, error) {
	links, err := s.project(
		ctx, projection{
			{"github", "social.github", nil},
			{"linkedin", "social.linkedin", nil},
			{"twitter", "social.twitter", nil},
		},
	)
	if err != nil {
		return nil, err
	}
	for name, v := range links {
		switch v {
		case nil, "", "0", false:
			delete(links, name)
		}
	}
	return links, nil
}

// GetAppearance returns the appearance settings
func (s *Service) GetAppearance(ctx context.Context) (map[string]any, error) {
	return s.project(
		ctx, projection{
			{"theme", "appearance.theme", DefaultTheme},
			{"primary_color", "appearance.primary_color", DefaultPrimaryColor},
			{"hero_background", "appearance.hero_background", nil},
		},
	)
}

// GetFeatures returns the feature flags
func (s *Service) GetFeatures(ctx context.Context) (map[string]any, error) {
	return s.project(
		ctx, projection{
			{"blog_enabled", "features.blog_enabled", true},
			{"contact_form_enabled", "features.contact_form_enabled", true},
			{"projects_per_page", "features.projects_per_page", DefaultProjectsPerPage},
		},
	)
}

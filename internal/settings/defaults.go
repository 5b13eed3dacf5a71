package settings

// Setting keys read by the application itself.
const (
	KeyMaintenanceMode    = "maintenance_mode"
	KeyMaintenanceMessage = "maintenance_message"
)

// Categories used by the default definitions.
const (
	CategoryBanner    = "banner"
	CategoryGeneral   = "general"
	CategoryPages     = "pages"
	CategorySocials   = "socials"
	CategorySEO       = "seo"
	CategoryAnalytics = "analytics"
	CategoryFeatures  = "features"
	CategorySystem    = "system"
)

// Definition describes a setting created by seeding.
// The type of the setting is the type of Default.
type Definition struct {
	Key         string
	Category    string
	Label       string
	Description string
	Default     Value
}

// Definitions is the table of known settings and their defaults.
var Definitions = []Definition{ //nolint:gochecknoglobals
	{
		Key: "home_banner_enabled", Category: CategoryBanner, Label: "Home banner",
		Description: "Show the banner on the home page",
		Default:     Bool(true),
	},
	{
		Key: "home_banner_url", Category: CategoryBanner, Label: "Home banner image",
		Description: "Image shown in the home page banner",
		Default:     Image("https://images.unsplash.com/photo-1552820728-8b83bb6b773f?w=1200&h=400&fit=crop"),
	},
	{
		Key: "site_name", Category: CategoryGeneral, Label: "Site name",
		Default: Text("HytaleServers.tech"),
	},
	{
		Key: "site_tagline", Category: CategoryGeneral, Label: "Tagline",
		Default: Text("Hytale server monitoring"),
	},
	{Key: "site_logo_url", Category: CategoryGeneral, Label: "Logo", Default: Image("")},
	{Key: "site_favicon_url", Category: CategoryGeneral, Label: "Favicon", Default: Image("")},
	{Key: "about_page_image", Category: CategoryPages, Label: "About page image", Default: Image("")},
	{
		Key: "about_page_content", Category: CategoryPages, Label: "About page",
		Default: Text("HytaleServers.tech is a monitoring site for Hytale servers."),
	},
	{Key: "privacy_page_content", Category: CategoryPages, Label: "Privacy policy", Default: Text("")},
	{Key: "terms_page_content", Category: CategoryPages, Label: "Terms of use", Default: Text("")},
	{Key: "social_telegram", Category: CategorySocials, Label: "Telegram", Default: Text("https://t.me/hytaleservers")},
	{Key: "social_discord", Category: CategorySocials, Label: "Discord", Default: Text("")},
	{Key: "contact_email", Category: CategorySocials, Label: "Contact email", Default: Text("support@hytaleservers.tech")},
	{Key: "contact_youtube", Category: CategorySocials, Label: "YouTube", Default: Text("")},
	{Key: "contact_vk", Category: CategorySocials, Label: "VK", Default: Text("")},
	{
		Key: "seo_title", Category: CategorySEO, Label: "Title",
		Default: Text("HytaleServers.tech - Hytale server monitoring"),
	},
	{
		Key: "seo_description", Category: CategorySEO, Label: "Description",
		Default: Text("Find the best Hytale server. Server rankings, reviews and live monitoring."),
	},
	{Key: "seo_keywords", Category: CategorySEO, Label: "Keywords", Default: Text("hytale, servers, monitoring, top, rating")},
	{Key: "analytics_ga_id", Category: CategoryAnalytics, Label: "Google Analytics ID", Default: Text("")},
	{Key: "analytics_ym_id", Category: CategoryAnalytics, Label: "Yandex Metrica ID", Default: Text("")},
	{
		Key: "feature_registration_enabled", Category: CategoryFeatures, Label: "Registration",
		Description: "Allow new users to register", Default: Bool(true),
	},
	{
		Key: "feature_voting_enabled", Category: CategoryFeatures, Label: "Voting",
		Description: "Allow voting for servers", Default: Bool(true),
	},
	{
		Key: "feature_server_submission_enabled", Category: CategoryFeatures, Label: "Server submission",
		Description: "Allow users to submit new servers", Default: Bool(true),
	},
	{
		Key: KeyMaintenanceMode, Category: CategorySystem, Label: "Maintenance mode",
		Description: "Answer public requests with 503 and the maintenance message", Default: Bool(false),
	},
	{
		Key: KeyMaintenanceMessage, Category: CategorySystem, Label: "Maintenance message",
		Default: Text("The site is temporarily unavailable. Please try again later."),
	},
	{Key: "beta_mode", Category: CategorySystem, Label: "Beta mode", Default: Bool(false)},
}

// Defaults returns a fresh map of every defined key to its default value.
func Defaults() map[string]Value {
	m := make(map[string]Value, len(Definitions))
	for _, def := range Definitions {
		m[def.Key] = def.Default
	}

	return m
}

package httpx

// CurrentPage constants identify the page rendered inside the layout.
const (
	PageAuth      = "auth"
	PageSignedOut = "signed-out"
	PageApplicant = "applicant"
	PageDashboard = "dashboard"
)

// Template paths used for loading templates in tests and dev mode.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Named fragments rendered on their own for htmx swaps.
const (
	fragmentAuthForm = "auth-form"
	fragmentWizard   = "wizard"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageAuth:      "auth-content",
	PageSignedOut: "signed-out-content",
	PageApplicant: "applicant-content",
	PageDashboard: "dashboard-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Unknown pages fall back to the auth page.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "auth-content"
}

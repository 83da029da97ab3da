package browser

// The register portal is a JSF/PrimeFaces application. Element ids
// contain colons, escaped here so the selectors work as CSS queries.
const (
	selSearchPageLink = `#naviForm\:normaleSucheLink`
	selKeywordsInput  = `#form\:schlagwoerter`
	selSearchButton   = `#form\:btnSuche`
	selResultsForm    = `form#ergebnissForm`
	selResultsRow     = `form#ergebnissForm table tr`
)

// uiMessageSelectors cover the regions the portal uses for validation
// banners and error notices.
var uiMessageSelectors = []string{".ui-messages", ".ui-message", ".error", ".warning", ".info"}

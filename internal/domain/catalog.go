package domain

// CatalogEntry is a known equipment record with its owning client.
// The catalog is maintained by the dashboard side; this service only
// reads it to resolve free text against known entities.
type CatalogEntry struct {
	ID         string
	Name       string
	Brand      string
	Model      string
	ClientName string
}

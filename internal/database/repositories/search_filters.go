package repositories

// SearchFilters narrows card queries. Zero values mean "no filter".
type SearchFilters struct {
	UserID       string
	Player       string
	Team         string
	Year         int
	Brand        string
	Category     string
	CollectionID string
	GradedOnly   bool
}

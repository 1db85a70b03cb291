package models

// Metrics are the headline numbers for a set of activity records. All fields
// are recomputed from scratch whenever the underlying record set changes.
type Metrics struct {
	TotalSpending   float64 `json:"total_spending"`
	TotalActivities int     `json:"total_activities"`
	AverageAmount   float64 `json:"average_amount"`
	FirstActivity   string  `json:"first_activity"`
	LastActivity    string  `json:"last_activity"`
	TopCategory     string  `json:"top_category"`
}

// LobbyistEntry is one distinct lobbyist seen across a record set.
type LobbyistEntry struct {
	Name          string   `json:"name"`
	ActivityCount int      `json:"activity_count"`
	TotalAmount   float64  `json:"total_amount"`
	Categories    []string `json:"categories"`
}

// TrendBucket is a period-keyed sum of spending and activity count.
// Year and Sub order buckets chronologically; Period is the display label
// derived from them at the presentation boundary.
type TrendBucket struct {
	Period string  `json:"period"`
	Year   int     `json:"-"`
	Sub    int     `json:"-"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// RelatedOrg is an organization ranked by similarity to a subject
// organization.
type RelatedOrg struct {
	Name             string   `json:"name"`
	TotalSpending    float64  `json:"total_spending"`
	ActivityCount    int      `json:"activity_count"`
	Categories       []string `json:"categories"`
	SharedCategories int      `json:"shared_categories"`
	SimilarityScore  float64  `json:"similarity_score"`
}

// NameAmount is a grouped total keyed by organization or category name.
type NameAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// Profile is the identity shape the dashboard reads from the auth layer.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

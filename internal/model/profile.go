// Package model defines the data structures used throughout the application.
// Upstream records (User, Repository) are what the provider returns; the
// summaries are what a lookup hands back to its caller.
package model

// ProfileSummary is the aggregated view of one GitHub user.
//
// It is built once per lookup and never mutated afterwards. The JSON field
// names keep the shape the dashboard front end already reads ("repos",
// "avatar", "stargazers_count").
//
// Optional upstream values (name, bio, location) are pointers so an absent
// value serialises as null rather than "".
type ProfileSummary struct {
	Username     string              `json:"login"`
	Name         *string             `json:"name"`
	AvatarURL    string              `json:"avatar"`
	Bio          *string             `json:"bio"`
	Location     *string             `json:"location"`
	Followers    int                 `json:"followers"`
	Following    int                 `json:"following"`
	Repositories []RepositorySummary `json:"repos"`  // stars descending
	Skills       []string            `json:"skills"` // set, in vocabulary order
}

// RepositorySummary is one repository card on the dashboard.
type RepositorySummary struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	URL         string  `json:"url"`
	Stars       int     `json:"stargazers_count"`
}

package model

// OwnerTypeUser is the owner type GitHub reports for individual accounts
// (organisations report "Organization").
const OwnerTypeUser = "User"

// User is the part of a provider user record the aggregator needs.
type User struct {
	ID        int64
	Login     string // canonical login, exact case
	Name      *string
	AvatarURL string
	Bio       *string
	Location  *string
	Followers int
	Following int
}

// Repository is the part of a provider repository record the aggregator needs.
// ID is the provider-assigned identity used for deduplication.
type Repository struct {
	ID          int64
	Name        string
	OwnerLogin  string
	OwnerType   string
	Fork        bool
	Description *string
	Language    *string
	HTMLURL     string
	Stars       int
}

// Summary projects a repository record into its dashboard form.
func (r Repository) Summary() RepositorySummary {
	stars := r.Stars
	if stars < 0 {
		stars = 0
	}
	return RepositorySummary{
		Name:        r.Name,
		Description: r.Description,
		Language:    r.Language,
		URL:         r.HTMLURL,
		Stars:       stars,
	}
}

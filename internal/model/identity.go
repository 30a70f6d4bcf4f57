package model

// ExternalIdentity is the profile returned by a third-party login provider.
type ExternalIdentity struct {
	Provider   string
	Subject    string // Stable provider user id (Google "id")
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

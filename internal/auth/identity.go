package auth

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string // e.g. "google"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string // verified email returned by provider
	EmailVerified  bool   // whether provider asserts email ownership
	Picture        string // profile image url, may be empty
}

// ExternalUsername synthesizes the account username an OAuth2 login maps
// to. It never collides with self-chosen usernames because of the
// provider prefix.
func (i *Identity) ExternalUsername() string {
	return i.Provider + "_" + i.ProviderUserID
}

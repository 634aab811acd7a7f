package common

// Alias HTTP surface paths shared by the server router and the client.
const (
	AliasAPIPath = "/api/share/alias"
	SlugParam    = "slug"
)

package cache

// credentialKeyer keeps responses fetched with different API keys apart.
// Two users sharing a redis or mongo cache may not see the same tags.
type credentialKeyer struct {
	Keyer
	scope string
}

// CredentialKeyer returns inner with every key prefixed by a short digest of
// apiKey. An empty apiKey leaves inner unchanged, and a nil inner means the
// default keyer.
func CredentialKeyer(inner Keyer, apiKey string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if apiKey == "" {
		return inner
	}
	return credentialKeyer{Keyer: inner, scope: "cred:" + Hash([]byte(apiKey))[:12] + ":"}
}

func (k credentialKeyer) QueryKey(endpoint, query string, variables any) string {
	return k.scope + k.Keyer.QueryKey(endpoint, query, variables)
}

package provi

// Marker annotates an injection site with the token of one container provider
// field. Markers are synthesized by NewInjector, one per provider field; they
// carry no behavior of their own; binding one to a parameter only records
// where a value should later be substituted.
type Marker struct {
	token Token
	sub   *Marker
}

func newMarker(token Token) *Marker {
	m := &Marker{token: token}
	m.sub = &Marker{token: mintToken(token.owner, token.field, true)}

	// The provider-identity marker is its own sub-marker; Provider() chains
	// terminate there.
	m.sub.sub = m.sub
	return m
}

// Token returns the token this marker records at a site.
func (m *Marker) Token() Token {
	return m.token
}

// Field returns the container field name the marker is bound to.
func (m *Marker) Field() string {
	return m.token.field
}

// Provider returns the nested provider-identity marker: a site bound through
// it receives the provider object itself (via its ProviderOfSelf accessor)
// rather than its resolved value.
func (m *Marker) Provider() *Marker {
	return m.sub
}

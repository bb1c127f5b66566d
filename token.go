package provi

import (
	"fmt"
	"reflect"

	"github.com/provilib/provi/internal/registry"
)

// defaultTokens memoizes token identities process-wide, so TokenFor returns
// the same Token for the same (container type, field) pair across calls and
// across injectors.
var defaultTokens = registry.New()

// Token is the opaque identity matching an injection site to one provider
// field of a container type. Tokens are comparable; two tokens are equal
// exactly when they name the same field of the same container type with the
// same kind (value vs provider-identity).
type Token struct {
	id       string
	owner    reflect.Type
	field    string
	provider bool
}

// TokenFor returns the value token for a provider field of container type T.
// It fails when T is not a struct, or the named field is not a provider
// field.
func TokenFor[T any](field string) (Token, error) {
	return tokenForType(reflect.TypeOf((*T)(nil)).Elem(), field)
}

func tokenForType(t reflect.Type, field string) (Token, error) {
	if t.Kind() != reflect.Struct {
		return Token{}, TokenError{Type: t, Field: field, Cause: ErrNotStruct}
	}

	f, ok := t.FieldByName(field)
	if !ok || !f.IsExported() || (f.Type != providerIfaceType && !f.Type.Implements(providerIfaceType)) {
		return Token{}, TokenError{Type: t, Field: field, Cause: ErrUnknownField}
	}

	return mintToken(t, field, false), nil
}

// mintToken builds a token from the memoized registry. Callers have already
// validated the field.
func mintToken(owner reflect.Type, field string, provider bool) Token {
	return Token{
		id:       defaultTokens.ID(registry.Key{Owner: owner, Field: field, Provider: provider}),
		owner:    owner,
		field:    field,
		provider: provider,
	}
}

// ID returns the token's unique identity string.
func (t Token) ID() string {
	return t.id
}

// Field returns the container field name the token is bound to.
func (t Token) Field() string {
	return t.field
}

// ForProvider reports whether this is a provider-identity token, injecting
// the provider itself rather than its resolved value.
func (t Token) ForProvider() bool {
	return t.provider
}

// IsZero reports whether the token is the zero Token.
func (t Token) IsZero() bool {
	return t.id == ""
}

func (t Token) String() string {
	if t.IsZero() {
		return "Token(zero)"
	}
	if t.provider {
		return fmt.Sprintf("Token(%s.%s, provider)", formatType(t.owner), t.field)
	}
	return fmt.Sprintf("Token(%s.%s)", formatType(t.owner), t.field)
}

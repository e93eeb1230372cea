package auth

import "github.com/sakif/event-saas/internal/model"

// TokenIssuer produces access and refresh tokens for a principal.
//
// It combines BuildClaims with the TokenCodec: the claim shape and the
// tokenType discriminator are decided here, the signing and expiry arithmetic
// in the codec. It has no failure modes of its own; codec errors propagate
// unchanged.
type TokenIssuer struct {
	codec *TokenCodec
}

// NewTokenIssuer creates a TokenIssuer over the given codec.
func NewTokenIssuer(codec *TokenCodec) *TokenIssuer {
	return &TokenIssuer{codec: codec}
}

// IssueAccessToken signs a short-lived access token for p.
func (i *TokenIssuer) IssueAccessToken(p model.Principal) (string, error) {
	claims := BuildClaims(p)
	claims.TokenType = TokenTypeAccess
	return i.codec.Create(claims, i.codec.AccessValidity())
}

// IssueRefreshToken signs a refresh token for p. Same claims as the access
// token apart from the tokenType tag and the longer validity.
func (i *TokenIssuer) IssueRefreshToken(p model.Principal) (string, error) {
	claims := BuildClaims(p)
	claims.TokenType = TokenTypeRefresh
	return i.codec.Create(claims, i.codec.RefreshValidity())
}

// ExpiresInSeconds returns the access-token lifetime for client consumption.
func (i *TokenIssuer) ExpiresInSeconds() int {
	return i.codec.ExpiresInSeconds()
}

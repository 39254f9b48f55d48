// Package auth issues, validates, and revokes signed bearer credentials.
//
// The package is organized around four collaborators: a TokenCodec that
// signs and verifies JWTs, a token Ledger that records every issued access
// token together with its revocation state, a CredentialVerifier that checks
// email/password pairs against bcrypt hashes, and an Auther that ties them
// together into the sign-up, sign-in, refresh, and logout flows.
//
// Access tokens are short lived and tracked in the ledger so they can be
// revoked before their natural expiry. Refresh tokens are longer lived and
// never persisted: their validity is derived purely from signature and
// expiry. Signing in (or refreshing) supersedes every previously valid
// access token for the user, so at most one access token per user is valid
// at any instant.
package auth

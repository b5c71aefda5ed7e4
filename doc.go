// Package auth provides credential issuance primitives (registration,
// password login, JWT minting and verification) plus the HTTP surface
// and request-time identity guard that sit on top of them.
//
// Registration:
//   - Register validates-by-contract (payload validation lives in the HTTP
//     layer), checks email and username uniqueness inside a transaction, and
//     relies on the schema's unique indexes to close the check-then-insert
//     window. A constraint violation from a concurrent registration maps to
//     the same conflict error the pre-check would have produced.
//
// Token issuance:
//   - TokenService signs HS256 tokens whose claims carry the user id both as
//     the subject and in a nested user object, so existing clients that read
//     user.id keep working. Validation rejects non-HMAC algorithms and
//     distinguishes expired from malformed tokens.
//
// Identity guard:
//   - middleware/jwtware extracts and validates bearer tokens; the
//     UserResolutionListener then loads the full user record and stores it on
//     the request context. Handlers read it back with FromContext. Unknown
//     subjects (token valid, user since deleted) fail the request with the
//     same 401 shape as a bad token.
package auth

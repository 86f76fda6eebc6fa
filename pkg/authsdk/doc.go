/*
Package authsdk is the wire contract and Go client of the accounts service.

The request and response types here are what the server decodes and encodes,
so both sides agree on field names. Request types validate themselves with
Validate, returning one httpx.FieldError per rejected field.

# Client and Session

Client covers the unauthenticated endpoints:

	client := authsdk.NewClient("http://localhost:8080")

	profile, err := client.Register(ctx, authsdk.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})

	session, err := client.Authenticate(ctx, "alice@example.com", "correct horse battery")

A Session carries the token pair and refreshes the access token shortly
before it expires. Refresh rotates the refresh token; the session keeps the
new one.

	me, source, err := session.Me(ctx) // source is "cache" or "database"
	page, _, err := session.ListUsers(ctx, 1, 10) // admin only
	err = session.Logout(ctx)

# Errors

Every non-2xx response becomes an *APIError. Match on the kind with
errors.Is against the predefined values:

	_, err := client.Refresh(ctx, oldToken)
	if errors.Is(err, authsdk.ErrRevoked) {
		// log in again
	}

The server writes the same type with (*APIError).WriteError.
*/
package authsdk

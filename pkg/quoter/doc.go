// Package quoter defines the public types of the Quoter API client: the
// configuration, the error taxonomy, the resource table and the query builder
// that turns logical filters into the provider's query string encoding.
//
// Clients are constructed with the quoterclient package:
//
//	client, err := quoterclient.New(ctx, &quoter.Config{
//		ClientID:     os.Getenv("QUOTER_CLIENT_ID"),
//		ClientSecret: os.Getenv("QUOTER_CLIENT_SECRET"),
//	})
//	if err != nil {
//		return err
//	}
//
//	params := quoter.BuildQueryParams(quoter.Filters{"nameContains": "acme"}, nil, false, 25)
//	page, err := client.Request(ctx, "GET", "/items", nil, params)
//
// Errors are one of *AuthError, *APIError or *ValidationError and can be
// inspected with errors.As or the IsNotFound, IsUnauthorized and
// IsRateLimited helpers.
package quoter

// Package quoterclient is the entry point for constructing a Quoter API
// client that implements the quoter.Client interface.
//
// It layers configuration normalization, token management and the retrying
// HTTP executor on top of the types defined in the quoter package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/quoter-client/pkg/quoter"
//	  "github.com/fivetwenty-io/quoter-client/pkg/quoterclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := quoterclient.New(&quoter.Config{
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  quotes, err := cli.Execute(ctx, "quote", quoter.OperationGetAll, &quoter.OperationParams{
//	    Filters:   quoter.Filters{"nameContains": "Acme"},
//	    ReturnAll: true,
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = quotes
//	}
//
// # Token stores
//
// Tokens are cached in memory unless Config.TokenStore is set. Use
// NewSQLiteTokenStore to keep them across restarts or NewNATSTokenStore to
// share one token between processes.
package quoterclient

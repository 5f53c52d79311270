// Package vocsearch provides a Go client for the vocsearch federated
// vocabulary search API.
//
//	client, _ := vocsearch.New("http://localhost:8080")
//	page, err := client.Autocomplete(ctx, vocsearch.AutocompleteRequest{
//	    Q:      "unemp",
//	    Vocabs: []string{"jel"},
//	    Limit:  10,
//	})
//
// All methods are safe for concurrent use. The client never retries; callers
// that need retry behavior should wrap the underlying http.Client.
package vocsearch

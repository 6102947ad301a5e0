// Package httputil provides the HTTP session shared by discovery and
// endpoint resolution.
//
// # Client
//
// [Client] wraps an *http.Client with default headers, status classification
// and an optional response cache:
//
//	client := httputil.NewClient(httputil.Options{
//	    Headers: map[string]string{"User-Agent": buildinfo.UserAgent()},
//	})
//	body, err := client.Fetch(ctx, "https://api.swaggerhub.com/v1/apis", false)
//
// Non-2xx responses become a [*StatusError] that matches [ErrNotFound] (404)
// or [ErrNetwork] with errors.Is. Transport failures also match [ErrNetwork].
//
// # Retry
//
// Requests are tried once by default. Setting Options.Attempts above 1 retries
// transient failures (transport errors and 5xx) through [Retry] with
// exponential backoff.
//
// # Redirects
//
// [Client.Location] does not follow redirects, so a 3xx response's Location
// header can be read directly.
package httputil

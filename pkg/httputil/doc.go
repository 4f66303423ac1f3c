// Package httputil provides HTTP helpers shared by the GraphQL transport.
//
// # Retry
//
// [Retry] re-runs an operation when it fails with an error marked by
// [Retryable]. The GraphQL client marks network failures, 5xx answers and
// 429 answers. Every other error is returned on the first attempt. Backoff
// doubles after each failure up to [MaxRetryDelay], and the wait aborts when
// the context is cancelled:
//
//	err := httputil.Retry(ctx, 3, httputil.DefaultRetryDelay, func() error {
//	    return doRequest(ctx)
//	})
//
// taggraph issues a single attempt unless the user raises the retry count
// in the config file.
package httputil

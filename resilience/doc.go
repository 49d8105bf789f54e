// Package resilience provides retry with exponential backoff and per-call
// timeouts for element invocations.
//
//	err := resilience.RetryFunc(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
//	    return resilience.WithTimeout(ctx, time.Second, "fetch", fetch)
//	})
//
// Configuration and misuse errors are permanent and never retried.
package resilience

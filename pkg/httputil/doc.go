// Package httputil provides HTTP utilities for roster source clients.
//
// # Overview
//
// This package provides infrastructure used by the HTTP roster source:
//
//   - [Client]: JSON GET requests with default headers, request IDs and retry
//   - [Snapshots]: File-based last-known-good copies of fetched documents
//   - [Retry]: Automatic retry with exponential backoff
//
// # Snapshots
//
// [Snapshots] keeps the most recent successful response per key under
// ~/.cache/orgtower/snapshots/. When the HR system is unreachable, a source
// can fall back to a snapshot that is younger than its maximum age:
//
//	snaps, err := httputil.NewSnapshots("")
//	if err := client.Get(ctx, url, &employees); err != nil {
//	    age, ok, _ := snaps.Load("flat", &employees)
//	    if !ok || age > time.Hour {
//	        return err
//	    }
//	}
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only. Failures are
// marked transient by wrapping them in [RetryableError]; [Client] does this
// for network errors and 5xx responses. The delay doubles after every
// attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch()
//	})
package httputil

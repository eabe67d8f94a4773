/*
Package observability turns engine lifecycle hooks into logs and metrics.

Metrics registers Prometheus collectors and exposes them as domain.LifecycleHooks;
LogHooks does the same for a slog.Logger. Combine chains several hook sets so
both can be installed on one engine.
*/
package observability

// Package health serves liveness, readiness and version endpoints for
// long-running dataval commands.
//
// Watch mode mounts them next to the metrics endpoint:
//
//	checker := health.New(0)
//	checker.RegisterCheck("schemas", health.PathCheck(dir))
//	checker.RegisterCheck("history", health.StoreCheck(store))
//	health.Register(mux, checker, health.VersionInfo{Version: version})
package health

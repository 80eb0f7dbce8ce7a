// Package handlers contains the health checking used by the HTTP server.
//
// Named checks run in parallel. Dependency checks gate /health and /ready,
// readiness checks gate /ready only:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("telegram", handlers.NewPingCheck(client))
//	checker.AddCheck("redis", handlers.NewPingCheck(cache))
//	checker.AddReadinessCheck("photo", handlers.NewAssetCheck(store, "tux.png"))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("Health check failed: %s", status.Message)
//	}
package handlers

// Package server runs the HTTP endpoint that exposes metrics and health
// checks while dataval watches schemas.
//
// The server wraps a handler with request ID, logging and panic recovery
// middleware and manages its lifecycle: Start blocks until the context is
// cancelled and then shuts down gracefully within ShutdownTimeout.
//
// # Basic Usage
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, health.VersionInfo{Version: version})
//
//	srv := server.New(&server.Config{ListenAddress: ":9090"}, mux, logger)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
package server

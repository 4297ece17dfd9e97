// Package http exposes configuration validation over HTTP.
//
// # Endpoints
//
//   - POST /v1/validate: validate the INI document in the request body and
//     return the report as JSON. The status is 200 whenever validation ran;
//     the "valid" field carries the outcome. Bodies above the configured
//     limit (1 MiB by default) get 413.
//   - GET /v1/runs?limit=&path=: recorded runs, newest first.
//   - GET /v1/runs/{id}: a single recorded run.
//   - GET /healthz: liveness probe.
//
// Errors use a JSON body of the form {"error": code, "message": text}. The run
// endpoints answer 404 with code "history_disabled" when no history backend is
// configured.
//
// # Usage
//
//	service, _ := confguard.NewCheckService(afero.NewOsFs(), repo)
//	handler := http.NewHandler(&http.HandlerConfig{}, service)
//	http.ListenAndServe(":5710", handler.Router())
package http

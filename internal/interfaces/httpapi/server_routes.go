package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET "+openAPIPath, handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/tournaments/{tournamentID}/bracket", handler.GetTournamentBracket)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	auth := func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, fn)
	}

	mux.Handle("GET /v1/leagues/{leagueID}/scrimmages", auth(handler.ListScrimmages))
	mux.Handle("POST /v1/leagues/{leagueID}/scrimmages", auth(handler.CreateScrimmage))
	mux.Handle("GET /v1/leagues/{leagueID}/scrimmages/{scrimmageID}", auth(handler.GetScrimmage))
	mux.Handle("PATCH /v1/leagues/{leagueID}/scrimmages/{scrimmageID}/accept", auth(handler.AcceptScrimmage))
	mux.Handle("PATCH /v1/leagues/{leagueID}/scrimmages/{scrimmageID}/reject", auth(handler.RejectScrimmage))
	mux.Handle("PATCH /v1/leagues/{leagueID}/scrimmages/{scrimmageID}/cancel", auth(handler.CancelScrimmage))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	internal := func(fn http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, fn)
	}

	mux.Handle("POST /v1/internal/leagues/{leagueID}/scrimmages/{scrimmageID}/running", internal(handler.MarkScrimmageRunning))
	mux.Handle("POST /v1/internal/leagues/{leagueID}/scrimmages/{scrimmageID}/result", internal(handler.ReportScrimmageResult))
	mux.Handle("POST /v1/internal/leagues/{leagueID}/scrimmages/{scrimmageID}/failure", internal(handler.ReportScrimmageFailure))
	mux.Handle("POST /v1/internal/leagues/{leagueID}/tournaments/{tournamentID}/matches", internal(handler.RecordTournamentMatch))
	mux.Handle("POST /v1/internal/jobs/dispatch-queued", internal(handler.RunDispatchQueuedJob))
}

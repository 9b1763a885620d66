package httpapi

import (
	"net/http"
)

func (h *Handler) GetTournamentBracket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournamentBracket")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	tournamentID := r.PathValue("tournamentID")
	bracket, err := h.bracketService.GetBracket(ctx, leagueID, tournamentID, r.URL.Query().Get("format"))
	if err != nil {
		h.logger.WarnContext(ctx, "get bracket failed", "league_id", leagueID, "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bracketToDTO(bracket))
}

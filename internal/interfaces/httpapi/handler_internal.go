package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/battlecode-league/internal/usecase"
)

// Internal routes are called by the match runner and the job queue. They are
// guarded by the internal job token instead of a user principal.

func (h *Handler) MarkScrimmageRunning(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarkScrimmageRunning")
	defer span.End()

	item, err := h.resultService.MarkScrimmageRunning(ctx, r.PathValue("leagueID"), r.PathValue("scrimmageID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scrimmageToDTO(item))
}

func (h *Handler) ReportScrimmageResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReportScrimmageResult")
	defer span.End()

	var req scrimmageResultRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	scrimmageID := r.PathValue("scrimmageID")
	item, err := h.resultService.ReportScrimmageResult(ctx, r.PathValue("leagueID"), scrimmageID, usecase.ScrimmageResultInput{
		MatchWinners: req.MatchWinners,
		Replays:      req.Replays,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "report scrimmage result failed", "scrimmage_id", scrimmageID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scrimmageToDTO(item))
}

func (h *Handler) ReportScrimmageFailure(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReportScrimmageFailure")
	defer span.End()

	var req scrimmageFailureRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	scrimmageID := r.PathValue("scrimmageID")
	item, err := h.resultService.ReportScrimmageFailure(ctx, r.PathValue("leagueID"), scrimmageID, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "report scrimmage failure failed", "scrimmage_id", scrimmageID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scrimmageToDTO(item))
}

func (h *Handler) RecordTournamentMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordTournamentMatch")
	defer span.End()

	var req recordMatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	tournamentID := r.PathValue("tournamentID")
	game, err := h.resultService.RecordTournamentMatch(ctx, r.PathValue("leagueID"), tournamentID, usecase.RecordMatchInput{
		RoundLabel:   req.Round,
		GameIndex:    req.GameIndex,
		WinnerTeamID: req.WinnerID,
		Replay:       req.Replay,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record tournament match failed",
			"tournament_id", tournamentID,
			"round", req.Round,
			"game_index", req.GameIndex,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, tournamentGameToDTO(game))
}

func (h *Handler) RunDispatchQueuedJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDispatchQueuedJob")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	result, err := h.resultService.DispatchQueued(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "dispatch queued job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dispatchResultDTO{
		Total:      result.Total,
		Dispatched: result.Dispatched,
		Failed:     result.Failed,
	})
}

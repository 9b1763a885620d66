package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/battlecode-league/internal/domain/scrimmage"
	"github.com/riskibarqy/battlecode-league/internal/usecase"
)

func (h *Handler) ListScrimmages(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScrimmages")
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

	actor, err := h.authorize(ctx, r, usecase.AccessRead)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.scrimmageService.ListScrimmages(ctx, actor, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list scrimmages failed", "league_id", actor.League.ID, "team_id", actor.Team.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]scrimmageDTO, 0, len(items))
	for _, item := range items {
		out = append(out, scrimmageToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) CreateScrimmage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateScrimmage")
	defer span.End()

	actor, err := h.authorize(ctx, r, usecase.AccessCreate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createScrimmageRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.scrimmageService.CreateScrimmage(ctx, actor, usecase.CreateScrimmageInput{
		RedTeamID:  req.RedTeamID,
		BlueTeamID: req.BlueTeamID,
		MapID:      req.MapID,
		Ranked:     req.Ranked,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create scrimmage failed", "league_id", actor.League.ID, "team_id", actor.Team.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, scrimmageToDTO(item))
}

func (h *Handler) GetScrimmage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScrimmage")
	defer span.End()

	actor, err := h.authorize(ctx, r, usecase.AccessRead)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.scrimmageService.GetScrimmage(ctx, actor, r.PathValue("scrimmageID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scrimmageToDTO(item))
}

func (h *Handler) AcceptScrimmage(w http.ResponseWriter, r *http.Request) {
	h.decideScrimmage(w, r, "httpapi.Handler.AcceptScrimmage", h.scrimmageService.AcceptScrimmage)
}

func (h *Handler) RejectScrimmage(w http.ResponseWriter, r *http.Request) {
	h.decideScrimmage(w, r, "httpapi.Handler.RejectScrimmage", h.scrimmageService.RejectScrimmage)
}

func (h *Handler) CancelScrimmage(w http.ResponseWriter, r *http.Request) {
	h.decideScrimmage(w, r, "httpapi.Handler.CancelScrimmage", h.scrimmageService.CancelScrimmage)
}

type scrimmageDecision func(ctx context.Context, actor usecase.TeamContext, scrimmageID string) (scrimmage.Scrimmage, error)

func (h *Handler) decideScrimmage(w http.ResponseWriter, r *http.Request, spanName string, decide scrimmageDecision) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	actor, err := h.authorize(ctx, r, usecase.AccessTransition)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	scrimmageID := r.PathValue("scrimmageID")
	item, err := decide(ctx, actor, scrimmageID)
	if err != nil {
		h.logger.WarnContext(ctx, "scrimmage decision failed",
			"operation", strings.TrimPrefix(spanName, "httpapi.Handler."),
			"scrimmage_id", scrimmageID,
			"team_id", actor.Team.ID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scrimmageToDTO(item))
}

package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
	"github.com/riskibarqy/battlecode-league/internal/usecase"
)

type Handler struct {
	authorizer       *usecase.Authorizer
	scrimmageService *usecase.ScrimmageService
	resultService    *usecase.MatchResultService
	bracketService   *usecase.BracketService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	authorizer *usecase.Authorizer,
	scrimmageService *usecase.ScrimmageService,
	resultService *usecase.MatchResultService,
	bracketService *usecase.BracketService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		authorizer:       authorizer,
		scrimmageService: scrimmageService,
		resultService:    resultService,
		bracketService:   bracketService,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorize resolves the caller's team in the path league.
func (h *Handler) authorize(ctx context.Context, r *http.Request, access usecase.Access) (usecase.TeamContext, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return usecase.TeamContext{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}

	return h.authorizer.Authorize(ctx, strings.TrimSpace(r.PathValue("leagueID")), principal.UserID, access)
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	decoder := jsoniter.NewDecoder(io.LimitReader(r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, dst)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

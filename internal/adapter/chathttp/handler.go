package chathttp

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/infra/logger"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/usecase"
)

type Handler struct {
	askUsecase  usecase.AskQuestionUsecase
	invalidator domain.CacheInvalidator
}

func NewHandler(askUsecase usecase.AskQuestionUsecase, invalidator domain.CacheInvalidator) *Handler {
	return &Handler{
		askUsecase:  askUsecase,
		invalidator: invalidator,
	}
}

// Register mounts the chat routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/chat/ask", h.Ask)
	e.POST("/internal/cache/invalidate", h.InvalidateCache)
}

type askRequest struct {
	Question  string             `json:"question"`
	ClinicID  string             `json:"clinic_id"`
	PatientID string             `json:"patient_id"`
	History   []usecase.ChatTurn `json:"history"`
	Limit     int                `json:"limit"`
}

// Ask answers one patient question.
// (POST /v1/chat/ask)
func (h *Handler) Ask(ctx echo.Context) error {
	var req askRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	reqCtx := ctx.Request().Context()
	if req.ClinicID != "" {
		reqCtx = logger.WithClinicID(reqCtx, req.ClinicID)
	}
	if req.PatientID != "" {
		reqCtx = logger.WithPatientID(reqCtx, req.PatientID)
	}

	output, err := h.askUsecase.Execute(reqCtx, usecase.AskInput{
		Question:  req.Question,
		ClinicID:  req.ClinicID,
		PatientID: req.PatientID,
		History:   req.History,
		Limit:     req.Limit,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to answer question"})
	}

	return ctx.JSON(http.StatusOK, output)
}

type invalidateRequest struct {
	ClinicID  string `json:"clinic_id"`
	PatientID string `json:"patient_id"`
}

// InvalidateCache drops cached clinic or patient records after an
// upstream update.
// (POST /internal/cache/invalidate)
func (h *Handler) InvalidateCache(ctx echo.Context) error {
	var req invalidateRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.ClinicID == "" && req.PatientID == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "clinic_id or patient_id is required"})
	}

	if req.ClinicID != "" {
		h.invalidator.InvalidateClinic(req.ClinicID)
	}
	if req.PatientID != "" {
		h.invalidator.InvalidatePatient(req.PatientID)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

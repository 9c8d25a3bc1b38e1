package handler

import (
	"errors"

	"talent-match/internal/delivery/http/dto"
	"talent-match/internal/delivery/http/middleware"
	"talent-match/internal/domain/match"
	"talent-match/internal/pkg/response"
	"talent-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	matching usecase.MatchingUsecase
	dispatch usecase.DispatchUsecase
	stats    usecase.StatsUsecase
}

func NewMatchHandler(matching usecase.MatchingUsecase, dispatch usecase.DispatchUsecase, stats usecase.StatsUsecase) *MatchHandler {
	return &MatchHandler{matching: matching, dispatch: dispatch, stats: stats}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/jobs")
	grp.Post("/:job_id/match", h.RunMatching)
	grp.Post("/:job_id/dispatch", h.Dispatch)
	grp.Get("/:job_id/stats", h.GetStats)
}

func (h *MatchHandler) RunMatching(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.matching.RunMatching(c.Context(), jobID)
	if err != nil {
		return mapUsecaseError(err)
	}

	out := dto.MatchRunResponse{
		JobID:     res.JobID,
		Persisted: res.Persisted,
		Matches:   make([]dto.RankedMatchResponse, 0, len(res.Matches)),
		Skipped:   make([]dto.SkippedCandidateResponse, 0, len(res.Skipped)),
		Stats:     statsResponse(res.Stats),
	}
	for _, m := range res.Matches {
		out.Matches = append(out.Matches, dto.RankedMatchResponse{
			UserID:    m.UserID,
			Score:     m.Score,
			Reasons:   m.Reasons,
			Qualified: m.Qualified,
		})
	}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, dto.SkippedCandidateResponse{UserID: s.UserID, Reason: s.Reason})
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MatchHandler) Dispatch(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.dispatch.Dispatch(c.Context(), jobID)
	if err != nil {
		return mapUsecaseError(err)
	}

	out := dto.DispatchResponse{
		JobID:     res.JobID,
		Eligible:  res.Eligible,
		Attempted: res.Attempted,
		Sent:      res.Sent,
		Failed:    res.Failed,
		Errors:    make([]dto.SendErrorResponse, 0, len(res.Errors)),
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, dto.SendErrorResponse{
			UserID:    e.UserID,
			Reason:    e.Reason,
			Permanent: e.Permanent,
		})
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MatchHandler) GetStats(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	s, err := h.stats.GetStats(c.Context(), jobID)
	if err != nil {
		return mapUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, statsResponse(s))
}

func statsResponse(s match.Stats) dto.StatsResponse {
	return dto.StatsResponse{
		TotalCandidates:  s.TotalCandidates,
		HighScoreMatches: s.HighScoreMatches,
		Notified:         s.Notified,
		Opened:           s.Opened,
		Clicked:          s.Clicked,
		AverageScore:     s.AverageScore,
		TopScore:         s.TopScore,
	}
}

func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, usecase.ErrJobNotEligible):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Job is not featured", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

package handler

import (
	"strings"

	"talent-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// transparentGIF is a 1x1 transparent pixel served to email clients that
// fetch the open-tracking image.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type TrackHandler struct {
	engagement usecase.EngagementUsecase
}

func NewTrackHandler(engagement usecase.EngagementUsecase) *TrackHandler {
	return &TrackHandler{engagement: engagement}
}

func (h *TrackHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/track")
	grp.Get("/open", h.TrackOpen)
	grp.Get("/click", h.TrackClick)
}

// TrackOpen always answers with the pixel: a malformed or repeated request
// must not break image rendering in the recipient's mail client.
func (h *TrackHandler) TrackOpen(c fiber.Ctx) error {
	jobID, userID, ok := trackIDs(c)
	if ok {
		_ = h.engagement.TrackOpen(c.Context(), jobID, userID)
	}

	c.Set(fiber.HeaderContentType, "image/gif")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).Send(transparentGIF)
}

func (h *TrackHandler) TrackClick(c fiber.Ctx) error {
	jobID, userID, ok := trackIDs(c)
	if ok {
		_ = h.engagement.TrackClick(c.Context(), jobID, userID)
	}

	target := c.Query("url")
	if !safeRedirect(target) {
		target = "/jobs/" + c.Query("job_id")
	}
	return c.Redirect().Status(fiber.StatusFound).To(target)
}

func trackIDs(c fiber.Ctx) (uuid.UUID, uuid.UUID, bool) {
	jobID, err := uuid.Parse(c.Query("job_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return jobID, userID, true
}

// safeRedirect only allows same-site relative targets, keeping the click
// endpoint from being used as an open redirector.
func safeRedirect(target string) bool {
	if target == "" {
		return false
	}
	if !strings.HasPrefix(target, "/") {
		return false
	}
	return !strings.HasPrefix(target, "//")
}

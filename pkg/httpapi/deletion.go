package httpapi

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"storeroom/pkg/deletion"
)

func (s *Server) listDeletionRequests(c *fiber.Ctx) error {
	status, err := deletion.ParseStatus(c.Query("status"))
	if err != nil {
		return s.badRequest(c, "deletion listing rejected", err.Error())
	}

	ctx, cancel := s.callContext()
	defer cancel()

	requests, err := s.deletions.List(ctx, status)
	if err != nil {
		return s.fail(c, "deletion listing failed", err)
	}
	s.logger.Info("deletion requests served", slog.Int("count", len(requests)))
	return c.JSON(requests)
}

func (s *Server) createDeletionRequest(c *fiber.Ctx) error {
	var payload struct {
		TransactionID string `json:"transactionId"`
		Reason        string `json:"reason"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return s.badRequest(c, "deletion request rejected: unable to decode payload", "invalid JSON")
	}

	ctx, cancel := s.callContext()
	defer cancel()

	req, err := s.deletions.Request(ctx, payload.TransactionID, payload.Reason, reviewer(c))
	if err != nil {
		return s.fail(c, "deletion request rejected", err)
	}
	s.logger.Info("deletion requested",
		slog.String("id", req.ID),
		slog.String("transaction", req.Transaction.ID),
		slog.String("by", req.RequestedBy),
	)
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (s *Server) approveDeletionRequest(c *fiber.Ctx) error {
	ctx, cancel := s.callContext()
	defer cancel()

	req, err := s.deletions.Approve(ctx, c.Params("id"), reviewer(c))
	if err != nil {
		return s.fail(c, "deletion approval failed", err)
	}
	s.logger.Info("deletion approved",
		slog.String("id", req.ID),
		slog.String("transaction", req.Transaction.ID),
		slog.String("by", req.ReviewedBy),
	)
	return c.JSON(req)
}

func (s *Server) rejectDeletionRequest(c *fiber.Ctx) error {
	var payload struct {
		Note string `json:"note"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return s.badRequest(c, "deletion rejection failed: unable to decode payload", "invalid JSON")
		}
	}

	ctx, cancel := s.callContext()
	defer cancel()

	req, err := s.deletions.Reject(ctx, c.Params("id"), reviewer(c), payload.Note)
	if err != nil {
		return s.fail(c, "deletion rejection failed", err)
	}
	s.logger.Info("deletion rejected",
		slog.String("id", req.ID),
		slog.String("transaction", req.Transaction.ID),
		slog.String("by", req.ReviewedBy),
	)
	return c.JSON(req)
}

package server

import (
	"trove/internal/models"
	"trove/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateClaim handles POST /api/claims
// @Summary Submit a claim on a found item
// @Description Create a pending ownership claim against a found, unclaimed item
// @Tags claims
// @Accept json
// @Produce json
// @Param request body object{item_id=int,description=string,proof_image_path=string} true "Claim details"
// @Success 201 {object} models.Claim
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Security BearerAuth
// @Router /claims [post]
func (s *Server) CreateClaim(c *fiber.Ctx) error {
	var req struct {
		ItemID         uint   `json:"item_id"`
		Description    string `json:"description"`
		ProofImagePath string `json:"proof_image_path"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ItemID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("item_id is required"))
	}

	claim, err := s.claimService.Create(c.UserContext(), service.CreateClaimInput{
		ItemID:         req.ItemID,
		ClaimantID:     actorID(c),
		Description:    req.Description,
		ProofImagePath: req.ProofImagePath,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(claim)
}

// GetClaim handles GET /api/claims/:id
// @Summary Get a claim
// @Tags claims
// @Produce json
// @Param id path int true "Claim ID"
// @Success 200 {object} models.Claim
// @Failure 404 {object} object{error=string}
// @Security BearerAuth
// @Router /claims/{id} [get]
func (s *Server) GetClaim(c *fiber.Ctx) error {
	claimID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	claim, err := s.claimService.GetByID(c.UserContext(), claimID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(claim)
}

// GetMyClaims handles GET /api/claims/me
// @Summary List the authenticated user's claims
// @Tags claims
// @Produce json
// @Success 200 {array} models.Claim
// @Security BearerAuth
// @Router /claims/me [get]
func (s *Server) GetMyClaims(c *fiber.Ctx) error {
	claims, err := s.claimService.ListByClaimant(c.UserContext(), actorID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(claims)
}

// GetItemClaims handles GET /api/items/:id/claims
// @Summary List claims on an item
// @Tags claims
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {array} models.Claim
// @Failure 404 {object} object{error=string}
// @Router /items/{id}/claims [get]
func (s *Server) GetItemClaims(c *fiber.Ctx) error {
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	claims, err := s.claimService.ListByItem(c.UserContext(), itemID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(claims)
}

// GetClaimsForAdminReview handles GET /api/claims/admin-review
// @Summary List claims forwarded for admin review
// @Tags claims
// @Produce json
// @Success 200 {array} models.Claim
// @Failure 403 {object} object{error=string}
// @Security BearerAuth
// @Router /claims/admin-review [get]
func (s *Server) GetClaimsForAdminReview(c *fiber.Ctx) error {
	claims, err := s.claimService.ListForAdminReview(c.UserContext(), actorID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(claims)
}

// ForwardClaimToAdmin handles POST /api/claims/:id/forward-to-admin
// @Summary Escalate a pending claim to admin review
// @Description Only the finder of the claimed item may forward
// @Tags claims
// @Produce json
// @Param id path int true "Claim ID"
// @Success 200 {object} models.Claim
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Security BearerAuth
// @Router /claims/{id}/forward-to-admin [post]
func (s *Server) ForwardClaimToAdmin(c *fiber.Ctx) error {
	claimID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	claim, err := s.claimService.ForwardToAdmin(c.UserContext(), actorID(c), claimID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(claim)
}

// ApproveClaim handles POST /api/claims/:id/approve
// @Summary Approve a claim (admin)
// @Description Marks the item claimed by the claimant and rejects competing active claims
// @Tags claims
// @Produce json
// @Param id path int true "Claim ID"
// @Success 200 {object} models.Claim
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Security BearerAuth
// @Router /claims/{id}/approve [post]
func (s *Server) ApproveClaim(c *fiber.Ctx) error {
	claimID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	claim, err := s.claimService.Approve(c.UserContext(), actorID(c), claimID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(claim)
}

// RejectClaim handles POST /api/claims/:id/reject
// @Summary Reject a claim (admin)
// @Tags claims
// @Accept json
// @Produce json
// @Param id path int true "Claim ID"
// @Param request body object{reason=string} false "Rejection reason"
// @Success 200 {object} models.Claim
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Security BearerAuth
// @Router /claims/{id}/reject [post]
func (s *Server) RejectClaim(c *fiber.Ctx) error {
	claimID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional; a bare reject carries no reason.
	_ = c.BodyParser(&req)

	claim, err := s.claimService.Reject(c.UserContext(), actorID(c), claimID, req.Reason)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(claim)
}

// UpdateClaim handles PUT /api/claims/:id
// @Summary Update a pending claim
// @Description Only the claimant may update, and only while the claim is pending
// @Tags claims
// @Accept json
// @Produce json
// @Param id path int true "Claim ID"
// @Param request body object{description=string,proof_image_path=string} true "Fields to update"
// @Success 200 {object} models.Claim
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Security BearerAuth
// @Router /claims/{id} [put]
func (s *Server) UpdateClaim(c *fiber.Ctx) error {
	claimID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Description    *string `json:"description"`
		ProofImagePath *string `json:"proof_image_path"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	claim, err := s.claimService.Update(c.UserContext(), actorID(c), claimID, service.UpdateClaimInput{
		Description:    req.Description,
		ProofImagePath: req.ProofImagePath,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(claim)
}

// DeleteClaim handles DELETE /api/claims/:id
// @Summary Delete a claim
// @Description Claimants may delete their own pending claims; admins may delete any claim
// @Tags claims
// @Produce json
// @Param id path int true "Claim ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Security BearerAuth
// @Router /claims/{id} [delete]
func (s *Server) DeleteClaim(c *fiber.Ctx) error {
	claimID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.claimService.Delete(c.UserContext(), actorID(c), claimID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Claim deleted"})
}

package server

import (
	"io"

	"trove/internal/models"
	"trove/internal/repository"
	"trove/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateItem handles POST /api/items
// @Summary Report a lost or found item
// @Tags items
// @Accept json
// @Produce json
// @Param request body object{title=string,description=string,location=string,is_lost=bool,category_id=int} true "Item details"
// @Success 201 {object} models.Item
// @Failure 400 {object} object{error=string}
// @Security BearerAuth
// @Router /items [post]
func (s *Server) CreateItem(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Location    string `json:"location"`
		IsLost      bool   `json:"is_lost"`
		CategoryID  uint   `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.itemService.Create(c.UserContext(), service.CreateItemInput{
		ReporterID:  actorID(c),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		IsLost:      req.IsLost,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetItems handles GET /api/items
// @Summary Browse items
// @Tags items
// @Produce json
// @Param is_lost query bool false "Filter lost vs found"
// @Param claimed query bool false "Filter by claimed state"
// @Param category_id query int false "Filter by category"
// @Param reporter_id query int false "Filter by reporter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Item
// @Router /items [get]
func (s *Server) GetItems(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	filter := repository.ItemFilter{
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	if c.Query("is_lost") != "" {
		isLost := c.QueryBool("is_lost")
		filter.IsLost = &isLost
	}
	if c.Query("claimed") != "" {
		claimed := c.QueryBool("claimed")
		filter.Claimed = &claimed
	}
	if id := c.QueryInt("category_id", 0); id > 0 {
		filter.CategoryID = uint(id)
	}
	if id := c.QueryInt("reporter_id", 0); id > 0 {
		filter.ReporterID = uint(id)
	}

	items, err := s.itemService.List(c.UserContext(), filter)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}

// GetItem handles GET /api/items/:id
// @Summary Get an item
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.Item
// @Failure 404 {object} object{error=string}
// @Router /items/{id} [get]
func (s *Server) GetItem(c *fiber.Ctx) error {
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	item, err := s.itemService.GetByID(c.UserContext(), itemID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(item)
}

// UpdateItem handles PUT /api/items/:id
// @Summary Update an item
// @Description Only the reporter or an admin may update; claimed items are frozen
// @Tags items
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body object{title=string,description=string,location=string,category_id=int} true "Fields to update"
// @Success 200 {object} models.Item
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Security BearerAuth
// @Router /items/{id} [put]
func (s *Server) UpdateItem(c *fiber.Ctx) error {
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Location    *string `json:"location"`
		CategoryID  *uint   `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.itemService.Update(c.UserContext(), actorID(c), itemID, service.UpdateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(item)
}

// DeleteItem handles DELETE /api/items/:id
// @Summary Delete an item
// @Description Only the reporter or an admin may delete; claimed items cannot be deleted
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Security BearerAuth
// @Router /items/{id} [delete]
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.itemService.Delete(c.UserContext(), actorID(c), itemID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item deleted"})
}

// UploadItemImage handles POST /api/items/:id/image
// @Summary Upload an item photo
// @Tags items
// @Accept mpfd
// @Produce json
// @Param id path int true "Item ID"
// @Param image formData file true "Photo"
// @Success 200 {object} object{item=models.Item,image_url=string}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Security BearerAuth
// @Router /items/{id}/image [post]
func (s *Server) UploadItemImage(c *fiber.Ctx) error {
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}

	name, err := s.store.Save(content, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	item, err := s.itemService.SetImagePath(c.UserContext(), actorID(c), itemID, name)
	if err != nil {
		// Best effort cleanup of the orphaned file.
		_ = s.store.Delete(name)
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"item": item, "image_url": item.ImageURL()})
}

// GetItemImage handles GET /api/items/:id/image
// @Summary Download an item photo
// @Tags items
// @Produce image/webp
// @Param id path int true "Item ID"
// @Success 200 {file} binary
// @Failure 404 {object} object{error=string}
// @Router /items/{id}/image [get]
func (s *Server) GetItemImage(c *fiber.Ctx) error {
	itemID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	item, err := s.itemService.GetByID(c.UserContext(), itemID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if item.ImagePath == "" {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Item image", itemID))
	}
	path, err := s.store.Path(item.ImagePath)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendFile(path)
}

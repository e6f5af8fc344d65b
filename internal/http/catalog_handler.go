package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodhub/internal/service"
)

// CategoryHandler expone el catálogo de categorías.
type CategoryHandler struct {
	logger     *zap.Logger
	categories *service.CategoryService
}

func NewCategoryHandler(logger *zap.Logger, categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{logger: logger, categories: categories}
}

// Create maneja POST /category/create con multipart (name, picture).
func (h *CategoryHandler) Create(c *gin.Context) {
	picture, closePicture, err := formImage(c, "picture")
	if err != nil {
		respondError(c, h.logger, err, "create category")
		return
	}
	defer closePicture()

	category, err := h.categories.Create(c.Request.Context(), c.PostForm("name"), picture)
	if err != nil {
		respondError(c, h.logger, err, "create category")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully", "category": category})
}

// List maneja GET /category/get.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data found successfully", "category": categories})
}

// FoodHandler expone el catálogo de platos y el interruptor de disponibilidad.
type FoodHandler struct {
	logger       *zap.Logger
	foods        *service.FoodService
	availability *service.Availability
}

func NewFoodHandler(logger *zap.Logger, foods *service.FoodService, availability *service.Availability) *FoodHandler {
	return &FoodHandler{logger: logger, foods: foods, availability: availability}
}

// Create maneja POST /food/create/:id; :id es la categoría.
func (h *FoodHandler) Create(c *gin.Context) {
	photo, closePhoto, err := formImage(c, "photo")
	if err != nil {
		respondError(c, h.logger, err, "create food")
		return
	}
	defer closePhoto()

	userID, _ := GetAuthUserID(c)
	food, err := h.foods.Create(c.Request.Context(), service.CreateFoodInput{
		CategoryID: c.Param("id"),
		UserID:     userID,
		Name:       c.PostForm("name"),
		Details:    c.PostForm("details"),
		Photo:      photo,
	})
	if err != nil {
		respondError(c, h.logger, err, "create food")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "food created successfully", "food": food})
}

// List maneja GET /food/getall.
func (h *FoodHandler) List(c *gin.Context) {
	foods, err := h.foods.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "list foods")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data found successfully", "data": foods})
}

// ListByCategory maneja GET /food/getall/:id.
func (h *FoodHandler) ListByCategory(c *gin.Context) {
	foods, err := h.foods.ListByCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "list foods")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data found successfully", "food": foods})
}

// Remove maneja DELETE /food/remove/:id.
func (h *FoodHandler) Remove(c *gin.Context) {
	if _, err := h.foods.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "remove food")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data removed successfully"})
}

// Edit maneja PUT /food/edit/:id. Sólo se tocan los campos presentes en el form.
func (h *FoodHandler) Edit(c *gin.Context) {
	photo, closePhoto, err := formImage(c, "photo")
	if err != nil {
		respondError(c, h.logger, err, "edit food")
		return
	}
	defer closePhoto()

	input := service.UpdateFoodInput{Photo: photo}
	if name, ok := c.GetPostForm("name"); ok {
		input.Name = &name
	}
	if details, ok := c.GetPostForm("details"); ok {
		input.Details = &details
	}
	if categoryID, ok := c.GetPostForm("category"); ok {
		input.CategoryID = &categoryID
	}

	food, err := h.foods.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, err, "edit food")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Food updated successfully", "status": "verified", "food": food})
}

// Search maneja GET /food/search/:keyword.
func (h *FoodHandler) Search(c *gin.Context) {
	foods, err := h.foods.Search(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		respondError(c, h.logger, err, "search foods")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Food found successfully", "food": foods})
}

// Status maneja GET /food/status.
func (h *FoodHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": h.availability.Status()})
}

// Toggle maneja POST /food/toggle.
func (h *FoodHandler) Toggle(c *gin.Context) {
	c.JSON(http.StatusOK, h.availability.Toggle())
}

// store.go - Handles seller store endpoints

package handlers

import (
	"net/http"

	"go-marketplace-backend/database"
	"go-marketplace-backend/middleware"
	"go-marketplace-backend/models"
	"go-marketplace-backend/services"

	"github.com/gin-gonic/gin"
)

// StoreInput - Body of a store create/update request
type StoreInput struct {
	ID          string       `json:"id" binding:"omitempty,max=36"`
	Name        string       `json:"name" binding:"required,catname"`
	Description string       `json:"description" binding:"max=2000"`
	Email       string       `json:"email" binding:"required,email"`
	Phone       string       `json:"phone" binding:"required,max=32"`
	URL         string       `json:"url" binding:"omitempty,slugurl"` // Derived from name when empty
	Logo        []ImageInput `json:"logo" binding:"required,len=1,dive"`
	Cover       []ImageInput `json:"cover" binding:"required,len=1,dive"`
	Featured    bool         `json:"featured"`
}

// UpsertStore - Creates or updates one of the caller's stores (201 created, 200 updated)
func UpsertStore(c *gin.Context) {
	var input StoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}
	if id := c.Param("id"); id != "" {
		input.ID = id
	}

	res, err := services.UpsertStore(c.Request.Context(), database.DB, middleware.CallerFrom(c), &models.Store{
		ID:          input.ID,
		Name:        input.Name,
		Description: input.Description,
		Email:       input.Email,
		Phone:       input.Phone,
		URL:         input.URL,
		Logo:        input.Logo[0].URL,
		Cover:       input.Cover[0].URL,
		Featured:    input.Featured,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(upsertStatus(res.Created), res.Entity)
}

// GetSellerStores - Lists the caller's stores
func GetSellerStores(c *gin.Context) {
	stores, err := services.GetSellerStores(c.Request.Context(), database.DB, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

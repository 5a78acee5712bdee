// subcategory.go - Handles subcategory endpoints (public reads, admin-only writes)

package handlers

import (
	"net/http"
	"strconv"

	"go-marketplace-backend/database"
	"go-marketplace-backend/middleware"
	"go-marketplace-backend/models"
	"go-marketplace-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubCategoryInput - Category fields plus the parent category id
type SubCategoryInput struct {
	ID         string       `json:"id" binding:"omitempty,max=36"`
	Name       string       `json:"name" binding:"required,catname"`
	Image      []ImageInput `json:"image" binding:"required,len=1,dive"`
	URL        string       `json:"url" binding:"required,slugurl"`
	Featured   bool         `json:"featured"`
	CategoryID string       `json:"categoryId" binding:"required"`
}

// UpsertSubCategory - Creates or updates a subcategory (201 created, 200 updated)
func UpsertSubCategory(c *gin.Context) {
	var input SubCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}
	if id := c.Param("id"); id != "" {
		input.ID = id
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}

	res, err := services.UpsertSubCategory(c.Request.Context(), database.DB, middleware.CallerFrom(c), &models.SubCategory{
		ID:         input.ID,
		Name:       input.Name,
		Image:      input.Image[0].URL,
		URL:        input.URL,
		Featured:   input.Featured,
		CategoryID: input.CategoryID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	publishChange("subcategory", upsertAction(res.Created), res.Entity)
	c.JSON(upsertStatus(res.Created), res.Entity)
}

// GetSubCategories - Lists subcategories
// ?random=true samples up to ?limit (default 10); ?limit alone caps the newest-first list.
// Without either, every subcategory is returned with its parent.
func GetSubCategories(c *gin.Context) {
	limitParam, randomParam := c.Query("limit"), c.Query("random")
	if limitParam == "" && randomParam == "" {
		subs, err := services.GetAllSubCategories(c.Request.Context(), database.DB)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, subs)
		return
	}

	limit := 0
	if limitParam != "" {
		n, err := strconv.Atoi(limitParam)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	random := false
	if randomParam != "" {
		b, err := strconv.ParseBool(randomParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "random must be true or false"})
			return
		}
		random = b
	}

	subs, err := services.GetSubcategories(c.Request.Context(), database.DB, limit, random)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// GetSubCategory - Returns one subcategory with its parent
func GetSubCategory(c *gin.Context) {
	sub, err := services.GetSubCategory(c.Request.Context(), database.DB, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// DeleteSubCategory - Removes one subcategory
func DeleteSubCategory(c *gin.Context) {
	sub, err := services.DeleteSubCategory(c.Request.Context(), database.DB, middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	publishChange("subcategory", "deleted", sub)
	c.JSON(http.StatusOK, sub)
}

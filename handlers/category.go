// category.go - Handles category endpoints (public reads, admin-only writes)

package handlers // Declares the package name

import ( // Import required packages
	"net/http" // HTTP status codes

	"go-marketplace-backend/database"   // Database connection
	"go-marketplace-backend/logger"     // Structured logging
	"go-marketplace-backend/metrics"    // Mutation counters
	"go-marketplace-backend/middleware" // Caller lookup
	"go-marketplace-backend/models"     // Category model
	"go-marketplace-backend/mqtt"       // Change notifications
	"go-marketplace-backend/services"   // Catalog service layer

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/google/uuid"   // Ids for new categories
)

// CategoryInput - Body of a category create/update request
type CategoryInput struct {
	ID       string       `json:"id" binding:"omitempty,max=36"`       // Client-generated id; generated when empty
	Name     string       `json:"name" binding:"required,catname"`     // 2-50 letters, numbers, spaces
	Image    []ImageInput `json:"image" binding:"required,len=1,dive"` // Exactly one image
	URL      string       `json:"url" binding:"required,slugurl"`      // 2-50 slug characters
	Featured bool         `json:"featured"`                            // Defaults to false
}

// UpsertCategory - Creates or updates a category (201 created, 200 updated)
// PUT /api/admin/categories/:id takes the id from the path
func UpsertCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil { // Parse and validate JSON input
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}
	if id := c.Param("id"); id != "" {
		input.ID = id
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}

	res, err := services.UpsertCategory(c.Request.Context(), database.DB, middleware.CallerFrom(c), &models.Category{
		ID:       input.ID,
		Name:     input.Name,
		Image:    input.Image[0].URL,
		URL:      input.URL,
		Featured: input.Featured,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	publishChange("category", upsertAction(res.Created), res.Entity)
	c.JSON(upsertStatus(res.Created), res.Entity)
}

// GetCategories - Lists every category, most recently updated first
func GetCategories(c *gin.Context) {
	categories, err := services.GetAllCategories(c.Request.Context(), database.DB)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory - Returns one category
func GetCategory(c *gin.Context) {
	category, err := services.GetCategory(c.Request.Context(), database.DB, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory - Removes a category and its subcategories
func DeleteCategory(c *gin.Context) {
	category, err := services.DeleteCategory(c.Request.Context(), database.DB, middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	publishChange("category", "deleted", category)
	c.JSON(http.StatusOK, category)
}

func upsertAction(created bool) string {
	if created {
		return "created"
	}
	return "updated"
}

// publishChange - Counts a catalog mutation and announces it on the broker.
// A broker failure never fails the request.
func publishChange(entity, action string, payload interface{}) {
	metrics.CatalogMutations.WithLabelValues(entity, action).Inc()
	if err := mqtt.Publish(mqtt.CatalogTopic(entity, action), payload); err != nil {
		logger.Warn("publish catalog change", "entity", entity, "action", action, "err", err)
	}
}

// dashboard.go - Role-gated dashboard routing
// Anonymous visitors and callers without the right role are sent back to "/".
// Every decision uses the role stored in the database (resolved by OptionalAuth).

package handlers // Declares the package name

import ( // Import required packages
	"net/http" // HTTP status codes

	"go-marketplace-backend/database"   // Database connection
	"go-marketplace-backend/middleware" // Caller lookup
	"go-marketplace-backend/models"     // Roles
	"go-marketplace-backend/services"   // Store and summary queries

	"github.com/gin-gonic/gin" // Gin web framework
)

const newStorePath = "/dashboard/seller/stores/new" // Store creation form

// hasRole - Reports whether the request caller holds role
func hasRole(c *gin.Context, role models.Role) bool {
	caller := middleware.CallerFrom(c)
	return caller != nil && caller.Role == role
}

// Dashboard - GET /dashboard sends each role to its area
func Dashboard(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller == nil { // Not signed in
		c.Redirect(http.StatusFound, "/")
		return
	}
	switch caller.Role {
	case models.RoleAdmin:
		c.Redirect(http.StatusFound, "/dashboard/admin")
	case models.RoleSeller:
		c.Redirect(http.StatusFound, "/dashboard/seller")
	default: // USER has no dashboard
		c.Redirect(http.StatusFound, "/")
	}
}

// AdminDashboard - GET /dashboard/admin returns the admin overview
func AdminDashboard(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	summary, err := services.AdminSummary(c.Request.Context(), database.DB, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SellerDashboard - GET /dashboard/seller opens the seller's first store,
// or the creation form when the seller has none
func SellerDashboard(c *gin.Context) {
	if !hasRole(c, models.RoleSeller) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	stores, err := services.GetSellerStores(c.Request.Context(), database.DB, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(stores) == 0 {
		c.Redirect(http.StatusFound, newStorePath)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard/seller/stores/"+stores[0].URL)
}

// SellerStoreDashboard - GET /dashboard/seller/stores/:url shows one of the caller's stores
// along with the store switcher list. "new" is the creation form.
func SellerStoreDashboard(c *gin.Context) {
	if !hasRole(c, models.RoleSeller) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	ctx := c.Request.Context()
	caller := middleware.CallerFrom(c)
	stores, err := services.GetSellerStores(ctx, database.DB, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	url := c.Param("url")
	if url == "new" {
		c.JSON(http.StatusOK, gin.H{"store": nil, "stores": stores})
		return
	}
	for i := range stores {
		if stores[i].URL == url {
			c.JSON(http.StatusOK, gin.H{"store": stores[i], "stores": stores})
			return
		}
	}
	c.Redirect(http.StatusFound, "/") // Unknown store or owned by someone else
}

// admin_test.go - Tests for the admin catalog and user management endpoints
// This file also holds the helpers shared by the handler tests

package handlers

import (
	"bytes"             // For building request bodies
	"encoding/json"     // For encoding/decoding JSON
	"net/http"          // HTTP status codes
	"net/http/httptest" // HTTP test helpers
	"path/filepath"     // Per-test database file
	"testing"           // Go's testing package
	"time"              // For token expiration

	"go-marketplace-backend/database"   // Database connection
	"go-marketplace-backend/middleware" // Authentication and RBAC
	"go-marketplace-backend/models"     // User, Category models

	"github.com/gin-gonic/gin"           // Gin web framework
	"github.com/golang-jwt/jwt/v5"       // JWT library
	"github.com/stretchr/testify/assert" // For assertions
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret"

// setupTestDB - Creates a fresh test database for one test and points database.DB at it
func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
}

// createUser - Stores a user with role and returns a session token for it
func createUser(t *testing.T, id, email string, role models.Role) string {
	t.Helper()
	require.NoError(t, database.DB.Create(&models.User{ID: id, Name: "Test", Email: email, Role: role}).Error)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": id,                                    // Provider user id
		"exp": time.Now().Add(72 * time.Hour).Unix(), // Token expiration
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// setupRouter - Creates a test router with the API routes
func setupRouter(users *Users) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	if users != nil {
		r.POST("/api/webhooks", users.Webhook)
	}
	r.GET("/api/categories", GetCategories)
	r.GET("/api/categories/:id", GetCategory)
	r.GET("/api/subcategories", GetSubCategories)

	admin := r.Group("/api/admin", middleware.AdminMiddleware(testSecret))
	admin.POST("/categories", UpsertCategory)
	admin.PUT("/categories/:id", UpsertCategory)
	admin.DELETE("/categories/:id", DeleteCategory)
	admin.POST("/subcategories", UpsertSubCategory)
	admin.DELETE("/subcategories/:id", DeleteSubCategory)
	if users != nil {
		admin.GET("/users", users.ListUsers)
		admin.PUT("/users/:id/role", users.SetRole)
	}

	seller := r.Group("/api/seller", middleware.AuthMiddleware(testSecret), middleware.RequireRole(models.RoleSeller))
	seller.GET("/stores", GetSellerStores)
	seller.POST("/stores", UpsertStore)

	dash := r.Group("/dashboard", middleware.OptionalAuth(testSecret))
	dash.GET("", Dashboard)
	dash.GET("/admin", AdminDashboard)
	dash.GET("/seller", SellerDashboard)
	dash.GET("/seller/stores/:url", SellerStoreDashboard)
	return r
}

// doJSON - Serves one request with an optional JSON body and session token
func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func categoryBody(id, name, url string) map[string]interface{} {
	return map[string]interface{}{
		"id":    id,
		"name":  name,
		"url":   url,
		"image": []map[string]string{{"url": "https://img/" + url + ".png"}},
	}
}

func countCategories(t *testing.T) int64 {
	var n int64
	require.NoError(t, database.DB.Model(&models.Category{}).Count(&n).Error)
	return n
}

// TestCreateAndUpdateCategory - Admin creates (201) then updates (200) a category
func TestCreateAndUpdateCategory(t *testing.T) {
	setupTestDB(t)
	adminToken := createUser(t, "admin_1", "admin@test.com", models.RoleAdmin)
	router := setupRouter(nil)

	w := doJSON(router, http.MethodPost, "/api/admin/categories", adminToken, categoryBody("c1", "Shoes", "shoes"))
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "c1", created.ID)
	assert.Equal(t, "https://img/shoes.png", created.Image)
	assert.False(t, created.Featured)

	body := categoryBody("", "Sneakers", "sneakers")
	body["featured"] = true
	w = doJSON(router, http.MethodPut, "/api/admin/categories/c1", adminToken, body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/categories/c1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Sneakers"`)
	assert.Contains(t, w.Body.String(), `"featured":true`)
	assert.Equal(t, int64(1), countCategories(t))
}

// TestCreateCategoryGeneratesID - A missing id is generated server-side
func TestCreateCategoryGeneratesID(t *testing.T) {
	setupTestDB(t)
	adminToken := createUser(t, "admin_1", "admin@test.com", models.RoleAdmin)
	router := setupRouter(nil)

	w := doJSON(router, http.MethodPost, "/api/admin/categories", adminToken, categoryBody("", "Shoes", "shoes"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created.ID, 36)
}

// TestDuplicateCategory - Name and URL collisions answer 409 with the field-specific message
func TestDuplicateCategory(t *testing.T) {
	setupTestDB(t)
	adminToken := createUser(t, "admin_1", "admin@test.com", models.RoleAdmin)
	router := setupRouter(nil)

	w := doJSON(router, http.MethodPost, "/api/admin/categories", adminToken, categoryBody("c1", "Shoes", "shoes"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/admin/categories", adminToken, categoryBody("c2", "Shoes", "boots"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "A category with the same name already exists")

	w = doJSON(router, http.MethodPost, "/api/admin/categories", adminToken, categoryBody("c2", "Boots", "shoes"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "A category with the same URL already exists")
	assert.Equal(t, int64(1), countCategories(t))
}

// TestCategoryValidation - Form rules are enforced server-side
func TestCategoryValidation(t *testing.T) {
	setupTestDB(t)
	adminToken := createUser(t, "admin_1", "admin@test.com", models.RoleAdmin)
	router := setupRouter(nil)

	cases := map[string]map[string]interface{}{
		"short name":       categoryBody("c1", "S", "shoes"),
		"symbol in name":   categoryBody("c1", "Shoes!", "shoes"),
		"double separator": categoryBody("c1", "Shoes", "sh--oes"),
		"space in url":     categoryBody("c1", "Shoes", "sh oes"),
		"no image": {
			"id": "c1", "name": "Shoes", "url": "shoes", "image": []map[string]string{},
		},
		"two images": {
			"id": "c1", "name": "Shoes", "url": "shoes",
			"image": []map[string]string{{"url": "a"}, {"url": "b"}},
		},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/admin/categories", adminToken, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Equal(t, int64(0), countCategories(t))
}

// TestNonAdminAccess - Regular users and sellers cannot mutate the catalog
func TestNonAdminAccess(t *testing.T) {
	setupTestDB(t)
	userToken := createUser(t, "user_1", "user@test.com", models.RoleUser)
	sellerToken := createUser(t, "seller_1", "seller@test.com", models.RoleSeller)
	router := setupRouter(nil)

	w := doJSON(router, http.MethodPost, "/api/admin/categories", userToken, categoryBody("c1", "Shoes", "shoes"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(router, http.MethodPost, "/api/admin/categories", sellerToken, categoryBody("c1", "Shoes", "shoes"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(router, http.MethodPost, "/api/admin/categories", "", categoryBody("c1", "Shoes", "shoes"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(router, http.MethodDelete, "/api/admin/categories/c1", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Equal(t, int64(0), countCategories(t))
}

// TestSubCategoryEndpoints - Parent checks, random sampling and deletion
func TestSubCategoryEndpoints(t *testing.T) {
	setupTestDB(t)
	adminToken := createUser(t, "admin_1", "admin@test.com", models.RoleAdmin)
	router := setupRouter(nil)

	sub := categoryBody("s1", "Running", "running")
	sub["categoryId"] = "missing"
	w := doJSON(router, http.MethodPost, "/api/admin/subcategories", adminToken, sub)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "parent category does not exist")

	delete(sub, "categoryId")
	w = doJSON(router, http.MethodPost, "/api/admin/subcategories", adminToken, sub)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/admin/categories", adminToken, categoryBody("c1", "Shoes", "shoes"))
	require.Equal(t, http.StatusCreated, w.Code)
	sub["categoryId"] = "c1"
	w = doJSON(router, http.MethodPost, "/api/admin/subcategories", adminToken, sub)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"categoryId":"c1"`)

	w = doJSON(router, http.MethodGet, "/api/subcategories?random=true&limit=5", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var subs []models.SubCategory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &subs))
	assert.Len(t, subs, 1)

	w = doJSON(router, http.MethodGet, "/api/subcategories?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(router, http.MethodGet, "/api/subcategories?random=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/admin/subcategories/s1", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodDelete, "/api/admin/subcategories/s1", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestDeleteCategory - Deleting a category answers with the removed entity
func TestDeleteCategory(t *testing.T) {
	setupTestDB(t)
	adminToken := createUser(t, "admin_1", "admin@test.com", models.RoleAdmin)
	router := setupRouter(nil)

	w := doJSON(router, http.MethodPost, "/api/admin/categories", adminToken, categoryBody("c1", "Shoes", "shoes"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/admin/categories/c1", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"c1"`)

	w = doJSON(router, http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Empty(t, categories)
}

// TestSetUserRole - Admin role change is stored and mirrored to the provider
func TestSetUserRole(t *testing.T) {
	setupTestDB(t)
	adminToken := createUser(t, "admin_1", "admin@test.com", models.RoleAdmin)
	userToken := createUser(t, "user_1", "user@test.com", models.RoleUser)
	idp := newFakeIdP(t, http.StatusOK)
	router := setupRouter(newTestUsers(t, idp.URL))

	w := doJSON(router, http.MethodPut, "/api/admin/users/user_1/role", adminToken, map[string]string{"role": "SELLER"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"SELLER"`)
	assert.Equal(t, []string{"user_1=SELLER"}, idp.Pushes())

	w = doJSON(router, http.MethodPut, "/api/admin/users/user_1/role", adminToken, map[string]string{"role": "OWNER"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(router, http.MethodPut, "/api/admin/users/ghost/role", adminToken, map[string]string{"role": "USER"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the new SELLER still cannot reach admin routes
	w = doJSON(router, http.MethodPut, "/api/admin/users/user_1/role", userToken, map[string]string{"role": "ADMIN"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodGet, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var users []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

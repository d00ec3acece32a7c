package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/zone_expense_backend/middlewares"
	"github.com/mmdatafocus/zone_expense_backend/models"
)

// RegisterRoutes mounts the JSON API under /api.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	auth := middlewares.AuthMiddleware(h.tokens)
	adminOnly := middlewares.RequireRole(models.RoleAdmin.String())

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.signup)
	authGroup.POST("/login", h.login)

	zones := api.Group("/zones", auth)
	zones.POST("", adminOnly, h.createZone)
	zones.GET("", h.listZones)
	zones.GET("/me", h.myZones)
	zones.POST("/assign", adminOnly, h.toggleZone)
	zones.PUT("/:id", adminOnly, h.updateZone)
	zones.DELETE("/:id", adminOnly, h.deleteZone)

	categories := api.Group("/categories", auth)
	categories.POST("", h.createCategory)
	categories.GET("", h.listCategories)
	categories.GET("/categories-summary", adminOnly, h.categorySummaries)
	categories.PUT("/:id", adminOnly, h.updateCategory)
	categories.DELETE("/:id", adminOnly, h.deleteCategory)

	expenses := api.Group("/expenses", auth)
	expenses.POST("", h.createExpense)
	expenses.GET("", h.myExpenses)
	expenses.PUT("/:id", h.updateExpense)
	expenses.DELETE("/:id", h.deleteExpense)
	expenses.POST("/:id/upload-receipt", h.uploadReceipt)

	users := api.Group("/users", auth)
	users.GET("/me", h.me)
	users.GET("/dashboard", h.userDashboard)
	users.GET("", h.listUsers)
	users.POST("/upload-profile", h.uploadProfilePhoto)
	users.PUT("/profile-image", h.replaceProfilePhoto)

	admin := api.Group("/admin", auth, adminOnly)
	admin.GET("/users", h.adminListUsers)
	admin.PUT("/role", h.updateRole)
	admin.POST("/create-user", h.adminCreateUser)
	admin.PUT("/update-user/:id", h.adminUpdateUser)
	admin.DELETE("/delete-users/:id", h.adminDeleteUser)
	admin.PUT("/reset-password/:id", h.resetPassword)
	admin.GET("/users/:id/zones", h.userZoneIds)
	admin.GET("/dashboard", h.dashboard)
	admin.GET("/reports/users", h.userReport)
	admin.GET("/reports/categories", h.categoryReport)
	admin.GET("/reports/zones", h.zoneReport)
	admin.GET("/reports/:kind/export", h.exportReport)
}

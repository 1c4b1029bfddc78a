package routes

import (
	"net/http"
	"time"

	"emporium_back_end/internal/handlers/admin"
	"emporium_back_end/internal/handlers/product"
	"emporium_back_end/internal/handlers/user"
	"emporium_back_end/internal/middleware"
	"emporium_back_end/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups every resource handler the router mounts.
type Handlers struct {
	Auth       *user.AuthHandler
	Users      *user.UserHandler
	Address    *user.AddressHandler
	Cart       *user.CartHandler
	Orders     *user.OrderHandler
	Products   *product.ProductHandler
	Brands     *product.NamedHandler
	Categories *product.NamedHandler
	Audit      *admin.AuditHandler
}

// Deps carries the cross-cutting pieces the middleware needs.
type Deps struct {
	Tokens         middleware.TokenParser
	Revoked        middleware.RevocationChecker
	Accounts       middleware.AccountChecker
	Limiter        *middleware.RateLimiter
	Auditor        *utils.Auditor
	Log            zerolog.Logger
	AllowOrigins   []string
	LoginRateLimit int
}

// NewEngine builds the gin engine with global middleware and all routes.
func NewEngine(h Handlers, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(d.Log),
		middleware.Recovery(d.Log),
		cors.New(corsConfig(d.AllowOrigins)),
		d.Limiter.API(middleware.APIMaxRequests, middleware.APIWindow),
	)
	RegisterRoutes(r, h, d)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"X-Total-Count", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func RegisterRoutes(r *gin.Engine, h Handlers, d Deps) {
	auth := middleware.AuthRequired(d.Tokens, d.Revoked, d.Accounts, d.Log)
	optional := middleware.OptionalAuth(d.Tokens, d.Revoked, d.Accounts, d.Log)
	adminOnly := []gin.HandlerFunc{auth, middleware.RequireAdmin}
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.AuditCriticalActions(d.Auditor, action, resource)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth
	a := r.Group("/auth")
	a.POST("/signup", audit(utils.ActionSignup, utils.ResourceAuth), h.Auth.Signup)
	a.POST("/login", d.Limiter.Login(d.LoginRateLimit), audit(utils.ActionLogin, utils.ResourceAuth), h.Auth.Login)
	a.GET("/logout", optional, audit(utils.ActionLogout, utils.ResourceAuth), h.Auth.Logout)
	a.GET("/check-auth", auth, h.Auth.CheckAuth)

	// Catalog
	p := r.Group("/products")
	p.GET("", optional, h.Products.List)
	p.GET("/search", h.Products.Search)
	p.GET("/:id", optional, h.Products.Get)

	pa := p.Group("", adminOnly...)
	pa.POST("", audit(utils.ActionProductCreate, utils.ResourceProduct), h.Products.Create)
	pa.PATCH("/:id", audit(utils.ActionProductUpdate, utils.ResourceProduct), h.Products.Update)
	pa.PUT("/:id", audit(utils.ActionProductUpdate, utils.ResourceProduct), h.Products.Update)
	pa.DELETE("/:id", audit(utils.ActionProductDelete, utils.ResourceProduct), h.Products.Delete)
	pa.PATCH("/undelete/:id", audit(utils.ActionProductUndelete, utils.ResourceProduct), h.Products.Undelete)
	pa.POST("/:id/images", audit(utils.ActionProductImage, utils.ResourceProduct), h.Products.UploadImage)

	r.GET("/brands", h.Brands.List)
	r.POST("/brands", append(adminOnly, audit(utils.ActionBrandCreate, utils.ResourceBrand), h.Brands.Create)...)
	r.GET("/categories", h.Categories.List)
	r.POST("/categories", append(adminOnly, audit(utils.ActionCategoryCreate, utils.ResourceCategory), h.Categories.Create)...)

	// Cart
	c := r.Group("/cart", auth)
	c.POST("", h.Cart.Add)
	c.GET("/:id", h.Cart.ListByUser)
	c.PUT("/:id", h.Cart.Update)
	c.DELETE("/:id", h.Cart.Delete)
	c.DELETE("/user/:id", h.Cart.Clear)

	// Orders
	o := r.Group("/orders", auth)
	o.POST("", audit(utils.ActionOrderCreate, utils.ResourceOrder), h.Orders.Create)
	o.GET("", middleware.RequireAdmin, h.Orders.List)
	o.GET("/user/:id", h.Orders.ListByUser)
	o.GET("/:id", h.Orders.Get)
	o.PUT("/:id", middleware.RequireAdmin, audit(utils.ActionOrderStatus, utils.ResourceOrder), h.Orders.UpdateStatus)
	o.PATCH("/:id", middleware.RequireAdmin, audit(utils.ActionOrderStatus, utils.ResourceOrder), h.Orders.UpdateStatus)

	// Addresses
	ad := r.Group("/address", auth)
	ad.POST("", h.Address.Create)
	ad.GET("/user/:id", h.Address.ListByUser)
	ad.PATCH("/:id", h.Address.Update)
	ad.DELETE("/:id", h.Address.Delete)

	// Users
	u := r.Group("/users", auth)
	u.GET("", middleware.RequireAdmin, h.Users.List)
	u.GET("/:id", h.Users.Get)
	u.PATCH("/:id", audit(utils.ActionUserUpdate, utils.ResourceUser), h.Users.Update)
	u.PATCH("/:id/toggle-status", middleware.RequireAdmin, audit(utils.ActionUserToggle, utils.ResourceUser), h.Users.ToggleStatus)

	// Audit trail
	adm := r.Group("/admin", adminOnly...)
	adm.GET("/audit-logs", h.Audit.List)
	adm.GET("/audit-logs/:resource/:resource_id", h.Audit.ByResource)
}

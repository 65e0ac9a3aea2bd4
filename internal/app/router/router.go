// Package router builds the HTTP route table.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	cataloghandler "course_backend/internal/feature/catalog/transport/handler"
	"course_backend/internal/feature/user/domain/entity"
	userhandler "course_backend/internal/feature/user/transport/handler"
	healthhandler "course_backend/internal/platform/http/handler"
	jwtmw "course_backend/internal/platform/jwt"
	"course_backend/internal/platform/metrics"
)

// Deps holds everything the route table needs.
type Deps struct {
	SessionSecret string
	Users         *userhandler.UserHandler
	Catalog       *cataloghandler.CatalogHandler
	Metrics       *metrics.Collector
	Gatherer      prometheus.Gatherer
	HealthChecks  []healthhandler.Check
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}

	// No session required
	health := healthhandler.Health(d.HealthChecks...)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}
	// Authenticated by signature, not by session
	r.POST("/webhooks/identity", d.Users.Webhook)
	r.GET("/courses", d.Catalog.ListCourses)
	r.GET("/courses/:id", d.Catalog.GetCourse)

	// Session required; /me and /sync also serve callers that are not linked yet
	auth := r.Group("/")
	auth.Use(jwtmw.SessionRequired(d.SessionSecret))
	{
		auth.GET("/me", d.Users.Me)
		auth.GET("/sync", d.Users.Sync)
		auth.GET("/me/purchases", d.Users.RequireRole(entity.RoleUser), d.Catalog.MyPurchases)
	}

	admin := auth.Group("/admin")
	admin.Use(d.Users.RequireRole(entity.RoleAdmin))
	{
		admin.POST("/courses", d.Catalog.CreateCourse)
		admin.POST("/purchases", d.Catalog.GrantPurchase)
	}

	return r
}

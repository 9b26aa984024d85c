package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Suryaprasath-41/Feedback-System/config"
	"github.com/Suryaprasath-41/Feedback-System/internal/api/handler"
	"github.com/Suryaprasath-41/Feedback-System/internal/api/middleware"
	"github.com/Suryaprasath-41/Feedback-System/pkg/jwt"
	"github.com/Suryaprasath-41/Feedback-System/pkg/redis"
)

// loginRateLimit login attempts per client IP per minute
const loginRateLimit = 10

// Setup builds the Gin engine; rdb may be nil
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, cfg.Server.MaxUploadBytes))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// public
		v1.POST("/auth/login", middleware.RateLimit(rdb, middleware.RateRule{
			Name: "login", Limit: loginRateLimit, Window: time.Minute, Key: middleware.ByClientIP,
		}), h.Auth.Login)
		v1.GET("/questions", h.Feedback.Questions)
		v1.POST("/students/resolve",
			middleware.RateLimit(rdb, middleware.RateRule{
				Name: "resolve", Limit: cfg.Feedback.ResolveRateLimit, Window: time.Minute, Key: middleware.ByClientIP,
			}),
			h.Feedback.Resolve,
		)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// student portal
			authorized.POST("/feedback/submit",
				middleware.RoleAuth(jwt.RoleStudent),
				middleware.RateLimit(rdb, middleware.RateRule{
					Name: "submit", Limit: cfg.Feedback.SubmitRateLimit, Window: time.Minute, Key: middleware.ByRegisterNo,
				}),
				h.Feedback.Submit,
			)

			// administration
			admin := authorized.Group("/admin", middleware.RoleAuth(jwt.RoleAdmin))
			{
				mappings := admin.Group("/mappings")
				{
					mappings.GET("", h.Mapping.ListMappings)
					mappings.POST("", h.Mapping.CreateMapping)
					mappings.DELETE("", h.Mapping.DeleteScope)
					mappings.DELETE("/:id", h.Mapping.DeleteMapping)
					mappings.POST("/reconcile", h.Mapping.Reconcile)
					mappings.POST("/upload", h.Mapping.Upload)
					mappings.GET("/template", h.Mapping.Template)
				}

				students := admin.Group("/students")
				{
					students.GET("", h.Student.ListStudents)
					students.POST("", h.Student.CreateStudent)
					students.POST("/range", h.Student.AddRange)
					students.POST("/upload", h.Student.Upload)
					students.GET("/template", h.Student.Template)
					students.GET("/groups", h.Student.ListGroups)
					students.PUT("/:register_no", h.Student.UpdateStudent)
					students.DELETE("/:register_no", h.Student.DeleteStudent)
				}

				admin.GET("/catalog", h.Catalog.ListCatalog)
				admin.POST("/catalog/:kind", h.Catalog.AddNames)
				admin.POST("/archive", h.Catalog.Archive)
			}

			// reports
			reports := authorized.Group("/reports", middleware.RoleAuth(jwt.RoleAdmin, jwt.RoleHOD))
			{
				reports.GET("/staff", h.Report.StaffReport)
				reports.GET("/department", h.Report.DepartmentReport)
				reports.GET("/department/export", h.Export.ExportDepartmentReport)
				reports.GET("/non-submission", h.Report.NonSubmission)
				reports.GET("/non-submission/export", h.Export.ExportNonSubmission)
			}
		}
	}

	return r
}

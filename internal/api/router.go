package api

import (
	"net/http"
	"time"

	"github.com/casbin/casbin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"hotel-ops-backend/config"
	"hotel-ops-backend/internal/filestore"
	"hotel-ops-backend/internal/mw"
	"hotel-ops-backend/internal/response"
	"hotel-ops-backend/internal/service"
	"hotel-ops-backend/internal/store"
)

// NewEnforcer loads the RBAC model and policy files.
func NewEnforcer(cfg config.AuthConfig) (*casbin.Enforcer, error) {
	e, err := casbin.NewEnforcerSafe(cfg.ModelPath, cfg.PolicyPath)
	if err != nil {
		return nil, err
	}
	e.EnableLog(false)
	return e, nil
}

// NewRouter creates and configures a new Gin router. enforcer may be nil when
// cfg.Auth.Enabled is false.
func NewRouter(cfg *config.Config, s store.Store, files filestore.Store, enforcer *casbin.Enforcer, log *logrus.Logger) *gin.Engine {
	RegisterValidations()

	r := gin.New()
	// Client addresses come from the socket; request_ip_header opts in to a proxy header.
	if err := r.SetTrustedProxies(nil); err != nil {
		log.WithError(err).Warn("failed to reset trusted proxies")
	}
	r.Use(gin.Recovery(), mw.Logger(log))
	r.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	handler := NewHandler(
		service.NewRoomService(s, files, log),
		service.NewBookingService(s, log),
		service.NewPaymentService(s, log),
		int64(cfg.Server.MaxUploadMB)<<20,
		log,
	)

	r.GET("/health", Health(s))
	r.Static("/uploads", cfg.Storage.Root)

	api := r.Group("/api")
	if cfg.Server.RateLimitPerSec > 0 {
		api.Use(mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, cfg.Server.RequestIPHeader))
	}
	if cfg.Auth.Enabled {
		api.Use(mw.Authenticate([]byte(cfg.Auth.JWTSecret), log), mw.Authorize(enforcer, log))
	}

	// Cache: disabled when no TTL is configured
	var rc *mw.ResponseCache
	if cfg.Server.CacheTTLSeconds > 0 {
		rc = mw.NewResponseCache(time.Duration(cfg.Server.CacheTTLSeconds) * time.Second)
	}
	resource := func(path string) *gin.RouterGroup {
		g := api.Group(path)
		if rc != nil {
			g.Use(rc.Handler(), rc.Invalidate("/api"+path))
		}
		return g
	}

	rooms := resource("/rooms")
	{
		rooms.GET("", handler.ListRooms)
		rooms.GET("/:id", handler.GetRoom)
		rooms.POST("", handler.CreateRoom)
		rooms.PUT("/:id", handler.UpdateRoom)
		rooms.DELETE("/:id", handler.DeleteRoom)
	}

	bookings := resource("/bookings")
	{
		bookings.GET("", handler.ListBookings)
		bookings.GET("/:id", handler.GetBooking)
		bookings.POST("", handler.CreateBooking)
		bookings.PUT("/:id", handler.UpdateBooking)
		bookings.DELETE("/:id", handler.DeleteBooking)
	}

	payments := resource("/payments")
	{
		payments.GET("", handler.ListPayments)
		payments.GET("/:id", handler.GetPayment)
		payments.POST("", handler.CreatePayment)
		payments.PUT("/:id", handler.UpdatePayment)
		payments.DELETE("/:id", handler.DeletePayment)
	}

	return r
}

// Health reports whether the database answers.
func Health(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.Fail[string](http.StatusServiceUnavailable, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OK("ok"))
	}
}

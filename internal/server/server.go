package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mingchang/meatshop/internal/authorization"
	"github.com/mingchang/meatshop/internal/category"
	categorydomain "github.com/mingchang/meatshop/internal/category/domain"
	"github.com/mingchang/meatshop/internal/company"
	companydomain "github.com/mingchang/meatshop/internal/company/domain"
	"github.com/mingchang/meatshop/internal/config"
	"github.com/mingchang/meatshop/internal/inquiry"
	inquirydomain "github.com/mingchang/meatshop/internal/inquiry/domain"
	"github.com/mingchang/meatshop/internal/observability"
	obsmiddleware "github.com/mingchang/meatshop/internal/observability/logger"
	obsmetrics "github.com/mingchang/meatshop/internal/observability/metrics"
	obstracing "github.com/mingchang/meatshop/internal/observability/tracing"
	"github.com/mingchang/meatshop/internal/product"
	productdomain "github.com/mingchang/meatshop/internal/product/domain"
	"github.com/mingchang/meatshop/internal/productimage"
	imagedomain "github.com/mingchang/meatshop/internal/productimage/domain"
	"github.com/mingchang/meatshop/internal/providers/email"
	"github.com/mingchang/meatshop/internal/providers/storage"
	"github.com/mingchang/meatshop/internal/ratelimit"
	"github.com/mingchang/meatshop/internal/staff"
	staffdomain "github.com/mingchang/meatshop/internal/staff/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	storage.Module,
	email.Module,
	ratelimit.Module,
	authorization.Module,
	staff.Module,
	category.Module,
	productimage.Module,
	product.Module,
	company.Module,
	inquiry.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second

	// maxUploadBytes bounds multipart image uploads.
	maxUploadBytes = 10 << 20
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	categorySvc    categorydomain.Service
	productSvc     productdomain.Service
	imageSvc       imagedomain.Service
	companySvc     companydomain.Service
	inquirySvc     inquirydomain.Service
	staffSvc       staffdomain.Service
	authzSvc       authorization.Service
	storage        storage.Provider
	contactLimiter *ratelimit.ContactLimiter
	obsMetrics     *obsmetrics.Metrics
	pages          *renderer
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	CategorySvc    categorydomain.Service
	ProductSvc     productdomain.Service
	ImageSvc       imagedomain.Service
	CompanySvc     companydomain.Service
	InquirySvc     inquirydomain.Service
	StaffSvc       staffdomain.Service
	AuthzSvc       authorization.Service
	Storage        storage.Provider
	ContactLimiter *ratelimit.ContactLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics       `optional:"true"`
}

func NewServer(p ServerParams) (*Server, error) {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		categorySvc:    p.CategorySvc,
		productSvc:     p.ProductSvc,
		imageSvc:       p.ImageSvc,
		companySvc:     p.CompanySvc,
		inquirySvc:     p.InquirySvc,
		staffSvc:       p.StaffSvc,
		authzSvc:       p.AuthzSvc,
		storage:        p.Storage,
		contactLimiter: p.ContactLimiter,
		obsMetrics:     p.ObsMetrics,
	}

	pages, err := newRenderer(svc.templateFuncs())
	if err != nil {
		return nil, err
	}
	svc.pages = pages

	svc.registerMediaRoutes()
	svc.registerPublicRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc, nil
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/", s.AllowedHosts())

	public.GET("/", s.Home)
	public.GET("/products/", s.ProductList)
	public.GET("/products/:slug/", s.ProductDetail)
	public.GET("/about/", s.About)
	public.GET("/location/", s.Location)

	public.GET("/contact/", s.ContactForm)
	public.POST("/contact/", s.ContactRateLimit(), s.SubmitContact)
	public.GET("/contact/product/:slug/", s.ProductContactForm)
	public.POST("/contact/product/:slug/", s.ContactRateLimit(), s.SubmitProductContact)
	public.GET("/contact/success/", s.ContactSuccess)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin/api", s.AllowedHosts(), s.AuthRequired())

	admin.GET("/categories", s.authorize(authorization.ObjectCategory, authorization.ActionView), s.ListCategories)
	admin.POST("/categories", s.authorize(authorization.ObjectCategory, authorization.ActionCreate), s.CreateCategory)
	admin.GET("/categories/:id", s.authorize(authorization.ObjectCategory, authorization.ActionView), s.GetCategory)
	admin.PUT("/categories/:id", s.authorize(authorization.ObjectCategory, authorization.ActionUpdate), s.UpdateCategory)
	admin.DELETE("/categories/:id", s.authorize(authorization.ObjectCategory, authorization.ActionDelete), s.DeleteCategory)

	admin.GET("/products", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.ListProducts)
	admin.POST("/products", s.authorize(authorization.ObjectProduct, authorization.ActionCreate), s.CreateProduct)
	admin.GET("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.GetProduct)
	admin.PUT("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionUpdate), s.UpdateProduct)
	admin.DELETE("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionDelete), s.DeleteProduct)

	admin.GET("/products/:id/images", s.authorize(authorization.ObjectProductImage, authorization.ActionView), s.ListProductImages)
	admin.POST("/products/:id/images", s.authorize(authorization.ObjectProductImage, authorization.ActionCreate), s.UploadProductImage)
	admin.GET("/images/:id", s.authorize(authorization.ObjectProductImage, authorization.ActionView), s.GetProductImage)
	admin.PUT("/images/:id", s.authorize(authorization.ObjectProductImage, authorization.ActionUpdate), s.UpdateProductImage)
	admin.DELETE("/images/:id", s.authorize(authorization.ObjectProductImage, authorization.ActionDelete), s.DeleteProductImage)

	admin.GET("/company", s.authorize(authorization.ObjectCompany, authorization.ActionView), s.GetCompany)
	admin.POST("/company", s.authorize(authorization.ObjectCompany, authorization.ActionCreate), s.CreateCompany)
	admin.PUT("/company", s.authorize(authorization.ObjectCompany, authorization.ActionUpdate), s.UpdateCompany)
	admin.DELETE("/company", s.DeleteCompany)
	admin.POST("/company/hero", s.authorize(authorization.ObjectCompany, authorization.ActionUpdate), s.UploadCompanyHero)

	admin.GET("/inquiries", s.authorize(authorization.ObjectInquiry, authorization.ActionView), s.ListInquiries)
	admin.GET("/inquiries/:id", s.authorize(authorization.ObjectInquiry, authorization.ActionView), s.GetInquiry)
	admin.PUT("/inquiries/:id", s.authorize(authorization.ObjectInquiry, authorization.ActionUpdate), s.UpdateInquiry)
	admin.POST("/inquiries/actions", s.authorize(authorization.ObjectInquiry, authorization.ActionUpdate), s.BulkInquiryAction)
}

// registerMediaRoutes serves uploaded files straight from disk. Remote
// storage hands out its own public URLs.
func (s *Server) registerMediaRoutes() {
	local, ok := s.storage.(*storage.Local)
	if !ok {
		return
	}
	prefix := "/" + strings.Trim(s.cfg.Storage.MediaURL, "/")
	if prefix == "/" {
		prefix = "/media"
	}
	s.engine.Static(prefix, local.Root())
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
			AbortWithError(c, ErrNotFound)
			return
		}
		s.renderError(c, ErrNotFound)
	})
}

// Package main library API.
//
// @title           Library Management API
// @version         1.0
// @description     Book catalog, identity and entitlement service.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/lena-biju/library-managment/app/echoServer"
	authctrl "github.com/lena-biju/library-managment/app/echoServer/controller/auth"
	bookctrl "github.com/lena-biju/library-managment/app/echoServer/controller/book"
	entctrl "github.com/lena-biju/library-managment/app/echoServer/controller/entitlement"
	paymentctrl "github.com/lena-biju/library-managment/app/echoServer/controller/payment"
	"github.com/lena-biju/library-managment/app/echoServer/validation"
	"github.com/lena-biju/library-managment/config"
	"github.com/lena-biju/library-managment/migrations"
	"github.com/lena-biju/library-managment/model"
	"github.com/lena-biju/library-managment/repository/catalog"
	entitlementrepo "github.com/lena-biju/library-managment/repository/entitlement"
	"github.com/lena-biju/library-managment/repository/media"
	paymentrepo "github.com/lena-biju/library-managment/repository/payment"
	userrepo "github.com/lena-biju/library-managment/repository/user"
	authsvc "github.com/lena-biju/library-managment/service/auth"
	catalogsvc "github.com/lena-biju/library-managment/service/catalog"
	entitlementsvc "github.com/lena-biju/library-managment/service/entitlement"
	"github.com/lena-biju/library-managment/service/plan"
	"github.com/lena-biju/library-managment/util/database"
	"github.com/lena-biju/library-managment/util/hash"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := migrations.Run(ctx, cfg.DatabaseURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	books, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		log.Error("catalog open failed", "err", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}

	uploads, err := media.NewLocal(cfg.MediaDir)
	if err != nil {
		log.Error("media dir unavailable", "err", err, "dir", cfg.MediaDir)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	er := entitlementrepo.New(db)
	pp := paymentrepo.NewHTTP(cfg.PaymentKey, os.Getenv("PAYMENT_CALLBACK_TOKEN"))

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	cs := catalogsvc.New(books)
	es := entitlementsvc.New(er, books, ur, plan.Default(), pp)

	if err := bootstrapLibrarian(ctx, cfg, ur, log); err != nil {
		log.Error("librarian bootstrap failed", "err", err)
		os.Exit(1)
	}

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: cs, Media: uploads, V: v, Log: log}
	entC := &entctrl.Controller{Svc: es, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: es, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		Book:        bookC,
		Entitlement: entC,
		Payment:     paymentC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}

// bootstrapLibrarian pre-provisions the library administrator so catalog
// mutations are possible on a fresh install. Skipped when not configured.
func bootstrapLibrarian(ctx context.Context, cfg config.App, ur userrepo.Repo, log *slog.Logger) error {
	if cfg.AdminPhone == "" || cfg.AdminPassword == "" {
		log.Warn("no bootstrap librarian configured")
		return nil
	}
	hashed, err := hash.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	return ur.EnsureLibrarian(ctx, &model.User{
		Name:         cfg.AdminName,
		Phone:        cfg.AdminPhone,
		Email:        cfg.AdminEmail,
		PasswordHash: hashed,
	})
}

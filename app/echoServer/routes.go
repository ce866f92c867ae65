package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/lena-biju/library-managment/app/echoServer/controller/auth"
	bookctrl "github.com/lena-biju/library-managment/app/echoServer/controller/book"
	entctrl "github.com/lena-biju/library-managment/app/echoServer/controller/entitlement"
	paymentctrl "github.com/lena-biju/library-managment/app/echoServer/controller/payment"
)

type C struct {
	Auth        *authctrl.Controller
	Book        *bookctrl.Controller
	Entitlement *entctrl.Controller
	Payment     *paymentctrl.Controller
	JWTSecret   string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users", c.Auth.Register)
	pub.POST("/sessions", c.Auth.Login)

	// payment provider callback
	pub.POST("/payment/webhook", c.Payment.HandleCallback)

	// catalog reads are public; the access decision guards content, not
	// the listing
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	auth.Use(ExtractIdentity())

	auth.POST("/checkout", c.Entitlement.Checkout)
	auth.POST("/entitlements", c.Entitlement.Grant)
	auth.GET("/entitlements/my", c.Entitlement.MyHistory)
	auth.GET("/entitlements/:userId/:bookId", c.Entitlement.Access)

	// Librarian endpoints
	admin := e.Group("/v1")
	admin.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	admin.Use(ExtractIdentity(), RequireLibrarian())

	admin.POST("/books", c.Book.Create)
	admin.PUT("/books/:id", c.Book.Update)
	admin.DELETE("/books/:id", c.Book.Delete)
	admin.POST("/books/:id/cover", c.Book.UploadCover)

	admin.PATCH("/users/:id/role", c.Auth.SetRole)
	admin.PATCH("/users/:id/plan", c.Auth.SetPlan)
	admin.POST("/entitlements/:id/reverse", c.Entitlement.Reverse)
}

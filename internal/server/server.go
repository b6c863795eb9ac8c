package server

import (
	"donation-engine/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	donationHandler *handler.DonationHandler
}

func NewServer(donationHandler *handler.DonationHandler) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		donationHandler: donationHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api/v1")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- payment flow --------
	donations := api.Group("/donations")
	donations.POST("/order", s.donationHandler.CreateOrder)
	donations.POST("/verify", s.donationHandler.VerifyPayment)
	donations.POST("/sync", s.donationHandler.Sync)

	// -------- provider callbacks --------
	// Fixed callback paths are registered before any /:id route so a
	// wildcard match can never swallow them.
	payments := api.Group("/payments")
	payments.POST("/payu/callback", s.donationHandler.PayUCallback)
	payments.GET("/payu/callback", s.donationHandler.PayUCallbackProbe)

	// -------- admin reads --------
	donations.GET("", s.donationHandler.List)
	donations.GET("/stats", s.donationHandler.Stats)
	donations.GET("/:id", s.donationHandler.Get)
	donations.GET("/:id/receipt", s.donationHandler.Receipt)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

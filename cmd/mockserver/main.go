// mockserver is a stand-in for the NeuroScan inference service. It
// speaks the same wire contract (multipart scan upload, result fetch,
// classification catalog, static scan images) but fabricates
// predictions deterministically instead of running a model, so the
// client can be developed and demoed offline.
package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/neuroscan/scanclient/internal/mockapi"
)

func main() {
	addr := flag.String("addr", ":8000", "Address to listen on")
	uploadDir := flag.String("upload-dir", "./uploads", "Directory for scan images and results")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	logger := log.WithField("component", "mockserver")

	store, err := mockapi.NewScanStore(*uploadDir)
	if err != nil {
		logger.Fatalf("initializing scan store: %v", err)
	}

	h := mockapi.NewHandler(store, logger)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	// The client rejects anything over 10 MiB before uploading; the
	// slack covers multipart framing.
	e.Use(middleware.BodyLimit("11M"))

	mockapi.RegisterRoutes(e, h)

	s := &http.Server{
		Addr:         *addr,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.WithFields(log.Fields{
		"addr":      *addr,
		"uploadDir": *uploadDir,
	}).Info("mock inference service listening")

	e.Logger.Fatal(e.StartServer(s))
}

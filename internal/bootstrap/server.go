package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wenyfour/rideshare/api"
	"github.com/wenyfour/rideshare/config"
	"github.com/wenyfour/rideshare/internal/auth"
	"github.com/wenyfour/rideshare/internal/observability"
	"github.com/wenyfour/rideshare/internal/service/accounts"
	"github.com/wenyfour/rideshare/internal/service/drivers"
	"github.com/wenyfour/rideshare/internal/service/rides"
	"github.com/wenyfour/rideshare/internal/service/transactions"
)

type Services struct {
	Rides        rides.RideUseCase
	Accounts     accounts.AccountUseCase
	Drivers      drivers.DriverUseCase
	Transactions transactions.TransactionUseCase
}

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, issuer *auth.TokenIssuer, svcs Services) error {
	srv := newServer(cfg, issuer, svcs)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServer(cfg *config.Config, issuer *auth.TokenIssuer, svcs Services) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery(), observability.Middleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	accountHandler := api.NewAccountHandler(svcs.Accounts)
	rideHandler := api.NewRideHandler(svcs.Rides)
	driverHandler := api.NewDriverHandler(svcs.Drivers)
	transactionHandler := api.NewTransactionHandler(svcs.Transactions)

	// Registration, login and the password reset flows are reachable
	// without a session. Everything else sits behind the bearer token.
	public := router.Group("/api/auth/users")
	accountHandler.RegisterPublic(public)

	authed := issuer.Middleware()

	users := router.Group("/api/auth/users", authed)
	accountHandler.RegisterProtected(users)

	ridesGroup := router.Group("/api/rides", authed)
	rideHandler.Register(ridesGroup)

	driversGroup := router.Group("/api/drivers", authed)
	driverHandler.RegisterDrivers(driversGroup)

	carsGroup := router.Group("/api/cars", authed)
	driverHandler.RegisterCars(carsGroup)

	txGroup := router.Group("/api/transactions", authed)
	transactionHandler.Register(txGroup)

	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}
}

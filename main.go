package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/account"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/discount"
	"storefront/internal/logging"
	"storefront/internal/mailer"
	"storefront/internal/middleware"
	"storefront/internal/order"
	"storefront/internal/payment"
	"storefront/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lg, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := serve(ctx, cfg, lg)
	stop()
	_ = lg.Sync()
	os.Exit(code)
}

// serve runs the server and maps its outcome to a process exit code.
func serve(ctx context.Context, cfg *config.Config, lg *zap.Logger) int {
	if err := run(ctx, cfg, lg); err != nil {
		lg.Error("Server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			lg.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()

	db := client.Database(cfg.DBName)
	lg.Info("MongoDB connected", zap.String("db", db.Name()))

	if err := database.EnsureIndexes(ctx, db, lg.Named("database")); err != nil {
		lg.Warn("Index setup incomplete", zap.Error(err))
	}

	stores := repository.New(db)

	var sender mailer.Sender = mailer.NewLogSender(lg.Named("mail"))
	if cfg.Mail.Enabled() {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	}
	dispatcher := mailer.NewDispatcher(sender, mailer.Options{
		Workers:      cfg.Mail.Workers,
		QueueSize:    cfg.Mail.QueueSize,
		MaxRetryTime: cfg.Mail.MaxRetryTime,
	}, lg.Named("mail"))

	var tx database.TxRunner = database.Sequential{}
	if cfg.OrderTxEnabled {
		tx = database.MongoTx{Client: client}
		lg.Info("Order placement runs in transactions")
	}

	svc := services{
		accounts: account.NewService(
			stores.Users,
			stores.Products,
			dispatcher,
			account.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL),
			lg.Named("account"),
		),
		carts:     cart.NewService(stores.Cart, lg.Named("cart")),
		orders:    order.NewService(stores.Users, stores.Orders, stores.Cart, dispatcher, tx, lg.Named("order")),
		discounts: discount.NewService(stores.Discounts, lg.Named("discount")),
		gateway: payment.NewGateway(payment.Config{
			TmnCode:    cfg.VNPay.TmnCode,
			HashSecret: cfg.VNPay.HashSecret,
			PayURL:     cfg.VNPay.PayURL,
			ReturnURL:  cfg.VNPay.ReturnURL,
		}, lg.Named("payment")),
		stores: stores,
	}

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(lg.Named("http")),
		middleware.Recovery(lg.Named("http")),
		middleware.Timeout(cfg.RequestTimeout),
	)
	registerRoutes(r, cfg, client, svc, lg)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	return g.Wait()
}

// Package main hotel booking API.
//
// @title           Hotel Booking API
// @version         1.0
// @description     Room availability, pricing, bookings and payments for a single property.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelbooking/app/echoServer"
	bookingctrl "hotelbooking/app/echoServer/controller/booking"
	paymentctrl "hotelbooking/app/echoServer/controller/payment"
	roomtypectrl "hotelbooking/app/echoServer/controller/roomtype"
	"hotelbooking/app/echoServer/validation"
	"hotelbooking/config"
	bookingrepo "hotelbooking/repository/booking"
	gatewayrepo "hotelbooking/repository/gateway"
	idempotencyrepo "hotelbooking/repository/idempotency"
	notifyrepo "hotelbooking/repository/notify"
	roomtyperepo "hotelbooking/repository/roomtype"
	bookingsvc "hotelbooking/service/booking"
	paymentsvc "hotelbooking/service/payment"
	"hotelbooking/service/pricing"
	roomtypesvc "hotelbooking/service/roomtype"
	"hotelbooking/util/database"
	jwtutil "hotelbooking/util/jwt"
	"hotelbooking/util/refgen"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// `hotelbooking admin-token` prints a bearer token for the admin routes.
	if len(os.Args) > 1 && os.Args[1] == "admin-token" {
		secret, err := config.LoadJWTSecret()
		if err != nil {
			log.Error("invalid configuration", "err", err)
			os.Exit(1)
		}
		tok, err := jwtutil.Issue(secret, "admin", jwtutil.RoleAdmin, 12*time.Hour)
		if err != nil {
			log.Error("issue admin token", "err", err)
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB: pgx pool + *sql.DB on top of it
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	roomRepo := roomtyperepo.New(db.SQL)
	bookingRepo := bookingrepo.New(db.SQL)

	bookingOpts := []bookingsvc.Option{
		bookingsvc.WithRates(pricing.Rates{TaxRate: cfg.TaxRate, DepositPercentage: cfg.DepositPercentage}),
		bookingsvc.WithLocation(cfg.HotelTimezone),
		bookingsvc.WithLogger(log),
	}

	if cfg.RedisURL != "" {
		opt, err := idempotencyrepo.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, idempotency keys degrade to plain creates", "err", err)
		}
		bookingOpts = append(bookingOpts, bookingsvc.WithIdempotency(idempotencyrepo.New(rdb, cfg.IdempotencyTTL)))
	}

	notifier := notifyrepo.NewLog(log)
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Warn("rabbitmq unreachable, booking events go to the log", "err", err)
		} else {
			defer conn.Close()
			n, ch, err := notifyrepo.NewAMQP(conn)
			if err != nil {
				log.Warn("rabbitmq channel setup failed, booking events go to the log", "err", err)
			} else {
				defer ch.Close()
				notifier = n
			}
		}
	}
	bookingOpts = append(bookingOpts, bookingsvc.WithNotifier(notifier))

	var gw gatewayrepo.Repo
	if cfg.PaymentGatewayURL != "" {
		gw = gatewayrepo.NewHTTP(cfg.PaymentGatewayURL, cfg.PaymentGatewayKey)
	} else {
		log.Info("PAYMENT_GATEWAY_URL not set, using the simulated gateway")
		gw = gatewayrepo.NewSimulated(nil, refgen.New(refgen.TransactionPrefix))
	}

	// services
	bs := bookingsvc.New(roomRepo, bookingRepo, bookingOpts...)
	ps := paymentsvc.New(bookingRepo, gw,
		paymentsvc.WithNotifier(notifier),
		paymentsvc.WithLogger(log),
	)
	rs := roomtypesvc.New(roomRepo)

	go bookingsvc.NewSweeper(bs, log).Run(ctx, cfg.NoShowSweepInterval)

	// controllers
	bookingC := &bookingctrl.Controller{Svc: bs, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}
	roomTypeC := &roomtypectrl.Controller{Svc: rs, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.Pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":  "degraded",
				"message": "database unreachable",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Booking:  bookingC,
		Payment:  paymentC,
		RoomType: roomTypeC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "PORT_env", os.Getenv("PORT"), "chosen_port", port, "tz", cfg.HotelTimezone.String())

	go func() {
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}

// Package main is the office book-lending tracker API.
package main

import (
	"context"
	"log/slog"
	"os"

	"booklend/app/echoServer"
	bookctrl "booklend/app/echoServer/controller/book"
	rentalctrl "booklend/app/echoServer/controller/rental"
	"booklend/app/echoServer/validation"
	"booklend/config"
	"booklend/migrations"
	bookrepo "booklend/repository/book"
	rentalrepo "booklend/repository/rental"
	userrepo "booklend/repository/user"
	booksvc "booklend/service/book"
	rentalsvc "booklend/service/rental"
	"booklend/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
)

func main() {

	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := rentalrepo.New(db)

	// services
	bs := booksvc.New(db, br, rr)
	rs := rentalsvc.New(db, rr)

	// controllers
	v := validator.New()
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	echoServer.Register(e, echoServer.C{
		Book:   bookC,
		Rental: rentalC,
		Users:  ur,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}

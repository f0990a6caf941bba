package echoServer

import (
	"net/http"

	"hotelbooking/app/echoServer/controller/booking"
	"hotelbooking/app/echoServer/controller/payment"
	"hotelbooking/app/echoServer/controller/roomtype"
	jwtutil "hotelbooking/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Booking   *booking.Controller
	Payment   *payment.Controller
	RoomType  *roomtype.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.GET("/room-types", c.RoomType.List)
	pub.GET("/room-types/:id", c.RoomType.Detail)
	pub.GET("/availability", c.Booking.Availability)

	pub.POST("/bookings", c.Booking.Create)
	pub.GET("/bookings", c.Booking.Get)

	// payment
	pub.POST("/payment", c.Payment.Apply)
	pub.GET("/payment", c.Payment.Status)

	// Admin
	admin := e.Group("/v1/admin")
	admin.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
		ErrorHandler: func(ctx echo.Context, err error) error {
			ctx.Logger().Warnf("[AUTH] rejected token req_id=%s ip=%s err=%v",
				ctx.Response().Header().Get(echo.HeaderXRequestID), ctx.RealIP(), err)
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	}))
	admin.Use(RequireRole(jwtutil.RoleAdmin))

	admin.POST("/bookings/no-show-sweep", c.Booking.SweepNoShows)
	admin.POST("/bookings/:reference/check-in", c.Booking.CheckIn)
	admin.POST("/bookings/:reference/check-out", c.Booking.CheckOut)
	admin.POST("/bookings/:reference/cancel", c.Booking.Cancel)
	admin.POST("/bookings/:reference/no-show", c.Booking.NoShow)
	admin.POST("/bookings/:reference/settle", c.Payment.Settle)
}

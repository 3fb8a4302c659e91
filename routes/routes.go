package routes

import (
	"clinic-connect/authentication"
	"clinic-connect/controllers"
	"clinic-connect/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ConfigRoutes wires every endpoint onto the engine with its controller.
func ConfigRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, log zerolog.Logger, mailer services.Mailer, sms services.SMSNotifier) {
	userController := controllers.NewUserController(db, rdb, log)
	passwordController := controllers.NewPasswordController(db, log, mailer)
	appointmentController := controllers.NewAppointmentController(db, log, mailer, sms)

	auth := authentication.JWTAuthMiddleware(rdb)

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", userController.Register)
		users.POST("/login", userController.Login)
		users.POST("/refresh", userController.Refresh)
		users.POST("/request-password-reset", passwordController.RequestPasswordResetOTP)
		users.PUT("/reset-password", passwordController.ResetPassword)
		users.GET("/doctors", userController.ListDoctors)
		users.GET("/specializations", userController.ListSpecializations)
	}

	authed := api.Group("/users")
	authed.Use(auth)
	{
		authed.GET("/profile", userController.Profile)
		authed.GET("/logout", userController.Logout)
		authed.POST("/change-password", passwordController.ChangePassword)
		authed.PUT("/:id", userController.UpdateUser)
		authed.PATCH("/:id", userController.UpdateUser)
	}

	appointments := api.Group("/appointments")
	appointments.Use(auth)
	{
		appointments.GET("", appointmentController.ListAppointments)
		appointments.POST("", appointmentController.BookAppointment)
		appointments.PATCH("/:id/status", appointmentController.UpdateStatus)
	}
}

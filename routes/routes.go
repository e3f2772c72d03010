package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coursehub/e-learning-backend/controllers"
	"github.com/coursehub/e-learning-backend/middleware"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", middleware.DBMiddleware(db), controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Public catalog. Optional auth so enrichment flags reflect the viewer.
	// The :course segment is a slug for the detail route and a uuid for
	// checkout; gin requires one param name per position.
	public := api.Group("")
	{
		public.Use(middleware.OptionalAuthMiddleware())
		public.GET("/courses", controllers.ListCourses)
		public.GET("/courses/:course", controllers.GetCourseBySlug)
		public.GET("/courses/:course/checkout", controllers.GetCheckout)
	}

	confirm := api.Group("/courses/:course")
	{
		confirm.Use(middleware.AuthMiddleware())
		confirm.POST("/checkout", controllers.ConfirmCheckout)
	}

	user := api.Group("/user")
	{
		user.Use(middleware.AuthMiddleware())

		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)

		user.GET("/courses", controllers.GetMyCourses)
		user.GET("/courses/:id", controllers.GetEnrolledCourse)
		user.PATCH("/courses/:id/progress", controllers.UpdateProgress)

		user.POST("/courses/:id/reviews", controllers.CreateReview)

		user.GET("/courses/:id/notes", controllers.GetNotes)
		user.POST("/courses/:id/notes", controllers.CreateNote)
		user.DELETE("/notes/:id", controllers.DeleteNote)

		user.GET("/wishlist", controllers.GetWishlist)
		user.POST("/wishlist/:courseId", controllers.AddToWishlist)
		user.DELETE("/wishlist/:courseId", controllers.RemoveFromWishlist)
	}

	instructor := api.Group("/instructor")
	{
		instructor.Use(middleware.AuthMiddleware(), middleware.RequireRoles("instructor", "admin"))

		instructor.GET("/courses", controllers.InstructorGetCourses)
		instructor.POST("/courses", controllers.InstructorCreateCourse)
		instructor.PUT("/courses/:id", controllers.InstructorUpdateCourse)
		instructor.PATCH("/courses/:id/publish", controllers.InstructorPublishCourse)

		instructor.GET("/courses/:id/lessons", controllers.InstructorGetLessons)
		instructor.POST("/courses/:id/lessons", controllers.InstructorCreateLesson)
		instructor.PATCH("/courses/:id/lessons/reorder", controllers.InstructorReorderLessons)
		instructor.PUT("/courses/:id/lessons/:lessonId", controllers.InstructorUpdateLesson)
		instructor.DELETE("/courses/:id/lessons/:lessonId", controllers.InstructorDeleteLesson)
	}

	admin := api.Group("/admin")
	{
		admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles("admin"))

		admin.POST("/categories", controllers.CreateCategory)
		admin.GET("/categories", controllers.GetCategories)
		admin.PUT("/categories/:id", controllers.UpdateCategory)
		admin.DELETE("/categories/:id", controllers.DeleteCategory)

		admin.GET("/courses", controllers.AdminGetCourses)
		admin.PATCH("/courses/:id/approve", controllers.ApproveCourse)
		admin.PATCH("/courses/:id/toggle-publish", controllers.ToggleCoursePublish)
		admin.DELETE("/courses/:id", controllers.AdminDeleteCourse)

		admin.GET("/transactions", controllers.AdminGetTransactions)
		admin.GET("/transactions/export", controllers.ExportTransactions)

		admin.GET("/users", controllers.AdminGetUsers)
		admin.GET("/users/:id", controllers.AdminGetUserDetail)

		admin.GET("/reviews", controllers.AdminGetReviews)
		admin.PATCH("/reviews/:id/approve", controllers.ApproveReview)
		admin.PATCH("/reviews/:id/unapprove", controllers.UnapproveReview)
		admin.DELETE("/reviews/:id", controllers.AdminDeleteReview)

		admin.GET("/promo-codes", controllers.AdminGetPromoCodes)
		admin.POST("/promo-codes", controllers.AdminCreatePromoCode)
		admin.PATCH("/promo-codes/:id/toggle-active", controllers.AdminTogglePromoCode)
		admin.DELETE("/promo-codes/:id", controllers.AdminDeletePromoCode)
	}

	return r
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/controllers"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/websocket"
)

// Controllers groups every HTTP controller the router mounts.
type Controllers struct {
	Auth           *controllers.AuthController
	Profile        *controllers.ProfileController
	Navigation     *controllers.NavigationController
	Event          *controllers.EventController
	Activity       *controllers.ActivityController
	Result         *controllers.ResultController
	Placement      *controllers.PlacementController
	PlacementAdmin *controllers.PlacementAdminController
	User           *controllers.UserController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	wsHandler *websocket.Handler,
) {
	v1 := router.Group("/api/v1")

	// --- Public routes. Signed-in callers get personalised detail. ---
	public := v1.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/events", ctrl.Event.ListPublicEvents)
		public.GET("/events/:slug", ctrl.Event.GetEventDetail)
		public.GET("/placements", ctrl.Placement.ListOpenJobs)
		public.GET("/placements/:id", ctrl.Placement.GetJobDetail)

		public.GET("/navigation/resolve", ctrl.Navigation.Resolve)
		public.GET("/navigation/destinations", ctrl.Navigation.Destinations)
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", ctrl.Auth.SignUp)
		auth.POST("/signin", ctrl.Auth.SignIn)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
		auth.POST("/signout", authMiddleware.JWTAuth(), ctrl.Auth.SignOut)
		auth.GET("/me", authMiddleware.JWTAuth(), ctrl.Auth.Me)
	}

	// --- Any signed-in user ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/navigation/home", ctrl.Navigation.Home)

		authenticated.GET("/profile", ctrl.Profile.GetProfile)
		authenticated.PUT("/profile", ctrl.Profile.UpdateProfile)
		authenticated.POST("/profile/avatar", ctrl.Profile.UploadAvatar)

		authenticated.POST("/events/:id/join", ctrl.Activity.JoinEvent)
		authenticated.DELETE("/events/:id/join", ctrl.Activity.LeaveEvent)
		authenticated.POST("/sub-events/:id/register", ctrl.Activity.Register)
		authenticated.POST("/placements/:id/apply", ctrl.Placement.Apply)

		me := authenticated.Group("/me")
		{
			me.GET("/events", ctrl.Activity.MyEvents)
			me.GET("/applications", ctrl.Placement.MyApplications)
			me.POST("/applications/:id/withdraw", ctrl.Placement.Withdraw)
			me.POST("/resume", ctrl.Placement.UploadResume)
		}

		authenticated.GET("/notifications/ws", wsHandler.HandleConnection)
	}

	// --- Super admin ---
	superAdmin := authenticated.Group("/super-admin")
	superAdmin.Use(authMiddleware.RequireDestination("/super-admin/*"))
	{
		superAdmin.GET("/stats", ctrl.User.GetStats)
		superAdmin.GET("/users", ctrl.User.GetUsersByFilter)
		superAdmin.POST("/users/:id/roles", ctrl.User.AddRole)
		superAdmin.DELETE("/users/:id/roles/:role", ctrl.User.RemoveRole)

		superAdmin.GET("/events", ctrl.Event.ListEvents)
		superAdmin.POST("/events", ctrl.Event.CreateEvent)
		superAdmin.PUT("/events/:id", ctrl.Event.UpdateEvent)
		superAdmin.DELETE("/events/:id", ctrl.Event.DeleteEvent)
		superAdmin.POST("/events/:id/banner", ctrl.Event.UploadBanner)
		superAdmin.GET("/events/:id/coordinators", ctrl.Event.ListCoordinators)
		superAdmin.POST("/events/:id/coordinators", ctrl.Event.AddCoordinator)
		superAdmin.DELETE("/events/:id/coordinators/:userId", ctrl.Event.RemoveCoordinator)
	}

	// --- Placement cell ---
	placementAdmin := authenticated.Group("/placement-admin")
	placementAdmin.Use(authMiddleware.RequireDestination("/placement-admin/*"))
	{
		placementAdmin.GET("/companies", ctrl.PlacementAdmin.ListCompanies)
		placementAdmin.POST("/companies", ctrl.PlacementAdmin.CreateCompany)
		placementAdmin.GET("/companies/:id", ctrl.PlacementAdmin.GetCompany)
		placementAdmin.PUT("/companies/:id", ctrl.PlacementAdmin.UpdateCompany)
		placementAdmin.DELETE("/companies/:id", ctrl.PlacementAdmin.DeleteCompany)
		placementAdmin.POST("/companies/:id/logo", ctrl.PlacementAdmin.UploadLogo)

		placementAdmin.GET("/jobs", ctrl.PlacementAdmin.ListJobs)
		placementAdmin.POST("/jobs", ctrl.PlacementAdmin.CreateJob)
		placementAdmin.PUT("/jobs/:id", ctrl.PlacementAdmin.UpdateJob)
		placementAdmin.DELETE("/jobs/:id", ctrl.PlacementAdmin.DeleteJob)
		placementAdmin.POST("/jobs/:id/description", ctrl.PlacementAdmin.UploadJobDescription)
		placementAdmin.GET("/jobs/:id/selected", ctrl.PlacementAdmin.SelectedCandidates)
		placementAdmin.POST("/jobs/:id/results", ctrl.PlacementAdmin.CreateResult)

		placementAdmin.GET("/applications", ctrl.PlacementAdmin.ListApplicants)
		placementAdmin.PATCH("/applications/:id/status", ctrl.PlacementAdmin.UpdateApplicationStatus)

		placementAdmin.GET("/results", ctrl.PlacementAdmin.ListResults)
		placementAdmin.PATCH("/results/:id", ctrl.PlacementAdmin.UpdateResult)
		placementAdmin.DELETE("/results/:id", ctrl.PlacementAdmin.DeleteResult)
		placementAdmin.POST("/results/:id/offer-letter", ctrl.PlacementAdmin.UploadOfferLetter)
	}

	// --- Event admins (coordinators) ---
	eventAdmin := authenticated.Group("/admin")
	eventAdmin.Use(authMiddleware.RequireDestination("/admin/*"))
	{
		eventAdmin.GET("/events", ctrl.Event.ListManagedEvents)
		eventAdmin.GET("/events/:id", ctrl.Event.GetManagedEvent)
		eventAdmin.GET("/events/:id/sub-events", ctrl.Event.ListSubEvents)
		eventAdmin.POST("/events/:id/sub-events", ctrl.Event.CreateSubEvent)
		eventAdmin.GET("/events/:id/results", ctrl.Result.ListResults)
		eventAdmin.GET("/events/:id/gallery", ctrl.Result.ListGallery)
		eventAdmin.POST("/events/:id/gallery", ctrl.Result.UploadGalleryImage)

		eventAdmin.PUT("/sub-events/:id", ctrl.Event.UpdateSubEvent)
		eventAdmin.DELETE("/sub-events/:id", ctrl.Event.DeleteSubEvent)
		eventAdmin.GET("/sub-events/:id/registrations", ctrl.Activity.ListRegistrations)
		eventAdmin.POST("/sub-events/:id/results", ctrl.Result.CreateResult)

		eventAdmin.PATCH("/registrations/:id/status", ctrl.Activity.UpdateRegistrationStatus)
		eventAdmin.DELETE("/results/:id", ctrl.Result.DeleteResult)
		eventAdmin.DELETE("/gallery/:id", ctrl.Result.DeleteGalleryImage)
	}
}

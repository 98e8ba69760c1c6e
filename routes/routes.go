// routes/routes.go
package routes

import (
	"time"

	"Gin_postgres_redis_fleet_custody/app"
	"Gin_postgres_redis_fleet_custody/controllers"
	"Gin_postgres_redis_fleet_custody/models"
)

// RegisterRoutes wires every endpoint. Groups share the auth middleware; the
// gestor/admin groups stack RoleRequired on top.
func RegisterRoutes(a *app.App) {
	s := controllers.GetSrv(a)
	vc := controllers.NewVehicleController(s)
	ic := controllers.NewItemController(s)
	wc := controllers.NewWizardController(s)
	pc := controllers.NewProtocolController(s)
	xc := controllers.NewProxyController(s)
	bc := controllers.GetBrokerController(s)

	authMW := app.AuthRequired(s.AppSess, s.BrokerSess, s.Repo, s.Cfg)
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)
	gestorMW := app.RoleRequired(s.Repo, models.RoleManager)
	adminMW := app.RoleRequired(s.Repo, models.RoleAdmin)

	// --- auth, public ---
	auth := a.Router.Group("/auth")
	{
		auth.POST("/register/begin", s.BeginRegistration)
		auth.POST("/register/finish", s.FinishRegistration)
		auth.POST("/login/begin", s.BeginLogin)
		auth.POST("/login/finish", s.FinishLogin)
		auth.POST("/broker/callback", bc.Callback)
	}

	// --- auth, behind a session ---
	authed := a.Router.Group("/auth", authMW)
	{
		authed.GET("/whoami", s.WhoAmI)
		authed.POST("/logout", s.Logout)
		authed.POST("/broker/logout", bc.Logout)
		authed.POST("/credentials/begin", s.BeginAddCredential)
		authed.POST("/credentials/finish", s.FinishAddCredential)
	}

	api := a.Router.Group("/api", authMW, seenMW)
	{
		// vehicles
		api.GET("/vehicles", vc.ListVehicles)
		api.GET("/vehicles/available", vc.ListAvailable)
		api.GET("/vehicles/:id", vc.GetVehicle)
		api.GET("/vehicles/:id/items", ic.ListVehicleItems)

		// items catalog
		api.GET("/items", ic.ListItems)

		// wizard, both modes
		api.POST("/wizard/:mode/start", wc.Start)
		api.GET("/wizard/:mode", wc.Get)
		api.PUT("/wizard/:mode/step", wc.SaveStep)
		api.POST("/wizard/:mode/advance", wc.Advance)
		api.POST("/wizard/:mode/back", wc.Back)
		api.POST("/wizard/:mode/submit", wc.Submit)
		api.DELETE("/wizard/:mode", wc.Discard)

		// protocols
		api.GET("/protocols", pc.ListProtocols)
		api.GET("/protocols/:id", pc.GetProtocol)
		api.GET("/protocols/:id/document", pc.GetProtocolDocument)

		// proxy dispatch (role checked per action inside)
		api.POST("/proxy", xc.Dispatch)
	}

	gestor := a.Router.Group("/api", authMW, seenMW, gestorMW)
	{
		gestor.POST("/vehicles", vc.CreateVehicle)
		gestor.PUT("/vehicles/:id", vc.UpdateVehicle)
		gestor.DELETE("/vehicles/:id", vc.DeleteVehicle)
		gestor.GET("/vehicles/custody", vc.ListCustody)
		gestor.PUT("/vehicles/:id/items/:itemId", ic.ConfigureVehicleItem)
		gestor.DELETE("/vehicles/:id/items/:itemId", ic.RemoveVehicleItem)

		gestor.POST("/items", ic.CreateItem)
		gestor.PUT("/items/:id", ic.UpdateItem)
		gestor.DELETE("/items/:id", ic.DeleteItem)

		gestor.GET("/dashboard/summary", s.DashboardSummary)
	}

	admin := a.Router.Group("/api/admin", authMW, seenMW, adminMW)
	{
		admin.POST("/invites", s.CreateInvite)
		admin.GET("/profiles", s.ListProfiles)
		admin.PUT("/profiles/:id/role", s.SetProfileRole)
		admin.DELETE("/profiles/:id", s.DeleteProfile)
		admin.GET("/audit", s.ListAudit)
	}
}

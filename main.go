package main

import (
	"context"
	"log"
	"os"
	"time"

	"Gin_postgres_redis_fleet_custody/app"
	"Gin_postgres_redis_fleet_custody/config"
	"Gin_postgres_redis_fleet_custody/db"
	"Gin_postgres_redis_fleet_custody/models"
	"Gin_postgres_redis_fleet_custody/routes"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	a := app.MustNew()
	defer a.Close()

	bootstrapAdmin(a)

	a.Router.GET("/healthz", func(c *app.Ctx) {
		c.JSON(200, app.H{"ok": true})
	})

	routes.RegisterRoutes(a)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("listening on :" + port)
	if err := a.Router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

// bootstrapAdmin promotes the configured profile to admin on startup, so a
// fresh deployment has a first administrator once that person registers.
func bootstrapAdmin(a *app.App) {
	email := a.Config.BootstrapEmail
	if email == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo := db.NewRepo(a.DB)
	p, err := repo.FindProfileByUsername(ctx, email)
	if err != nil {
		a.Log.Info("bootstrap admin not registered yet", zap.String("email", email))
		return
	}
	if p.Role != models.RoleAdmin {
		if err := repo.UpdateProfileRole(ctx, p.ID, models.RoleAdmin); err != nil {
			a.Log.Warn("bootstrap admin promotion failed", zap.Error(err))
			return
		}
		a.Log.Info("bootstrap admin promoted", zap.String("email", email))
	}
}

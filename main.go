package main

import (
	"flag"

	"github.com/cppla/microblog/config"
	"github.com/cppla/microblog/models"
	"github.com/cppla/microblog/routes"
	"github.com/cppla/microblog/utils"
)

func main() {
	seedOnly := flag.Bool("seed-roles", false, "seed the role table and exit")
	flag.Parse()

	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Role{}, &models.User{}, &models.Follow{}, &models.Post{}, &models.Comment{})

	// Idempotent: safe to run at every boot and as a deploy step.
	if err := models.SeedRoles(db); err != nil {
		utils.Sugar.Fatalf("seeding roles failed: %v", err)
	}
	if *seedOnly {
		utils.Sugar.Info("roles seeded")
		return
	}

	r := routes.SetupRouter(db, utils.SMTPMailer{})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

package main

import (
	"context"
	"flag"

	"go-kiosk-pos/internal/config"
	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"
	"go-kiosk-pos/internal/service"
	"go-kiosk-pos/pkg/database"
	"go-kiosk-pos/pkg/logger"
)

// reset-pin sets a new PIN for a staff member, or for the root account when
// no name is given.
func main() {
	name := flag.String("name", "", "staff full name (default: root account)")
	pin := flag.String("pin", "", "new PIN, format aa-000000")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.ServiceName, true)

	newPIN := *pin
	if newPIN == "" {
		newPIN = cfg.SeedRootPIN
	}
	if !service.ValidPINFormat(newPIN) {
		logger.Logger.Fatal().Msg("PIN must look like aa-000000")
	}

	db := database.ConnectDB(cfg)
	staffRepo := repository.NewStaffRepo(db)
	ctx := context.Background()

	var staff *model.Staff
	if *name == "" {
		staff, err = staffRepo.FindRoot(ctx)
	} else {
		staff, err = staffRepo.FindByName(ctx, *name)
	}
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("name", *name).Msg("Staff not found")
	}

	if err := staff.SetPIN(newPIN); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to hash PIN")
	}
	if err := staffRepo.UpdatePIN(ctx, staff.ID, staff.PINHash); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to update PIN")
	}

	service.NewAuditRecorder(repository.NewAuditRepo(db)).Record(ctx, service.AuditEntry{
		ActorName:  "SYSTEM",
		Action:     model.ActionResetPIN,
		EntityType: model.EntityStaff,
		EntityID:   &staff.ID,
	})

	logger.Logger.Info().Str("name", staff.FullName).Msg("PIN reset")
}

package cmd

import (
	"github.com/moguard/subctl/internal/config"
	"github.com/moguard/subctl/internal/gitops"
	"github.com/moguard/subctl/internal/instance"
	"github.com/moguard/subctl/internal/logging"
	"github.com/moguard/subctl/internal/pgadmin"
	"github.com/moguard/subctl/internal/systemd"
)

// buildManager wires the lifecycle manager from the loaded configuration.
// The returned cleanup closes the operation log.
func buildManager() (*instance.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NopLogger()
	cleanup := func() {}
	if cfg.Logging.Enabled {
		fileLogger, err := logging.NewLogger(cfg.Deploy.BaseDir, cfg.Logging.Level)
		if err == nil {
			logger = fileLogger
			cleanup = func() { _ = fileLogger.Close() }
		}
		// Fall back to the nop logger when the base dir is not writable;
		// operator-facing output does not depend on the operation log.
	}

	git := gitops.NewCLIClient(cfg.Deploy.RepoURL, cfg.Deploy.Token, cfg.Deploy.CloneDepth)
	sys := systemd.NewCLIManager(cfg.Paths.UnitDir)
	openAdmin := func() (pgadmin.Admin, error) {
		return pgadmin.Connect(cfg.Database.AdminDSN)
	}

	return instance.NewManager(cfg, git, sys, openAdmin, logger), cleanup, nil
}

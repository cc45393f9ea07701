package cmd

import (
	"fmt"

	"github.com/zjrosen/brainstorm/internal/infrastructure/sqlite"
	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
	"github.com/zjrosen/brainstorm/internal/orchestration/session"
)

// openStore opens the session database.
func openStore() (*session.Store, func(), error) {
	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening session database: %w", err)
	}
	store := session.NewStore(db.SessionRepository(), db.RunRepository(), cfg.OutputDir)
	return store, func() { _ = db.Close() }, nil
}

// newSelector builds the role selector from the configured rule table.
func newSelector() (*roles.Selector, error) {
	if cfg.Roles.RulesFile == "" {
		return roles.NewSelector(roles.DefaultRules()), nil
	}
	rules, err := roles.LoadRules(cfg.Roles.RulesFile)
	if err != nil {
		return nil, err
	}
	return roles.NewSelector(rules), nil
}

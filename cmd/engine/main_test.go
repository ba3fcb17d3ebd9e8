package main

import (
	"testing"

	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestCheckPersistentStore(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "memory"}}
	err := checkPersistentStore(cfg, "seed")
	assert.ErrorContains(t, err, "seed needs --db-url")

	cfg.Store.Driver = "postgres"
	assert.NoError(t, checkPersistentStore(cfg, "cycle"))
}

package config

import "testing"

func TestConfig_Storage(t *testing.T) {
	var cfg Config
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = "/var/lib/studio.db"
	cfg.Store.RedisPrefix = "zen"

	got := cfg.Storage()
	if got.Driver != "sqlite" || got.SQLitePath != "/var/lib/studio.db" || got.RedisPrefix != "zen" {
		t.Errorf("unexpected storage config %+v", got)
	}
}

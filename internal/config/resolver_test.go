package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestResolve_StoreModulesFirst(t *testing.T) {
	t.Parallel()

	cfg := &Config{Modules: map[string]yaml.Node{
		"gateway.http": {},
		"store.sqlite": {},
		"monitor.cron": {},
		"mcp.server":   {},
	}}

	got := Resolve(cfg)
	want := []string{"store.sqlite", "gateway.http", "mcp.server", "monitor.cron"}
	if len(got) != len(want) {
		t.Fatalf("ids = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}

func TestResolve_Empty(t *testing.T) {
	t.Parallel()

	if ids := Resolve(&Config{}); len(ids) != 0 {
		t.Errorf("ids = %v, want none", ids)
	}
}

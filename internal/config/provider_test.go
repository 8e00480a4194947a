package config

import "testing"

func TestProvider_Current(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	p := NewProvider(cfg)
	if p.Current() != cfg {
		t.Error("Current did not return the seeded config")
	}
}

func TestProvider_SwapNotifiesListeners(t *testing.T) {
	t.Parallel()

	p := NewProvider(validConfig())

	var got []*Config
	p.OnChange(func(c *Config) { got = append(got, c) })
	p.OnChange(func(c *Config) { got = append(got, c) })

	next := validConfig()
	next.Memory.Mode = "aggressive"
	p.Swap(next)

	if p.Current() != next {
		t.Error("Swap did not install the new config")
	}
	if len(got) != 2 {
		t.Fatalf("%d listener calls, want 2", len(got))
	}
	for _, c := range got {
		if c != next {
			t.Error("listener received the wrong config")
		}
	}
}

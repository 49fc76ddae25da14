package postgres

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.defaults()
	if c.MaxConns != 10 || c.MinConns != 1 {
		t.Errorf("conns = %d/%d, want 10/1", c.MaxConns, c.MinConns)
	}
	if c.MaxConnLifetime != 30*time.Minute || c.MaxConnIdleTime != 5*time.Minute {
		t.Errorf("lifetimes = %v/%v", c.MaxConnLifetime, c.MaxConnIdleTime)
	}
}

func TestConfigDefaults_ClampsMinConns(t *testing.T) {
	c := Config{MaxConns: 3, MinConns: 8, MaxConnLifetime: time.Hour}
	c.defaults()
	if c.MinConns != 3 {
		t.Errorf("MinConns = %d, want clamped to 3", c.MinConns)
	}
	if c.MaxConnLifetime != time.Hour {
		t.Errorf("explicit lifetime overwritten: %v", c.MaxConnLifetime)
	}
}

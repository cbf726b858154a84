package config

import (
	"os"
	"testing"
)

const testSecret = "test-secret"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBMaxConns != 25 || cfg.DBMinConns != 5 {
		t.Errorf("pool = %d/%d, want 25/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if !cfg.AutoMigrate || !cfg.MetricsEnabled {
		t.Errorf("AutoMigrate = %v, MetricsEnabled = %v", cfg.AutoMigrate, cfg.MetricsEnabled)
	}
	if cfg.InviteExpiryDays != 0 {
		t.Errorf("InviteExpiryDays = %d, want 0", cfg.InviteExpiryDays)
	}
	if cfg.InviteExpirySchedule != "0 */6 * * *" {
		t.Errorf("InviteExpirySchedule = %q", cfg.InviteExpirySchedule)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("INVITE_EXPIRY_DAYS", "14")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Errorf("AppEnv = %q", cfg.AppEnv)
	}
	if cfg.InviteExpiryDays != 14 {
		t.Errorf("InviteExpiryDays = %d", cfg.InviteExpiryDays)
	}
	if cfg.AutoMigrate {
		t.Error("AutoMigrate should be false")
	}
}

func TestLoadInvalidValue(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name: "port is not a number",
			setup: func(t *testing.T) {
				t.Setenv("JWT_SECRET", testSecret)
				t.Setenv("PORT", "not-a-number")
			},
		},
		{
			name: "jwt secret missing",
			setup: func(t *testing.T) {
				t.Setenv("JWT_SECRET", "")
				os.Unsetenv("JWT_SECRET")
			},
		},
		{
			name: "jwt secret empty",
			setup: func(t *testing.T) {
				t.Setenv("JWT_SECRET", "")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

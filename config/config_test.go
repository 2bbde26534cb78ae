package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TIMETABLE_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望 Port=8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Timetable.SlotTolerance != 5*time.Minute {
		t.Errorf("期望 SlotTolerance=5m，实际=%s", cfg.Timetable.SlotTolerance)
	}
	if cfg.Timetable.MaxListDays != 366 {
		t.Errorf("期望 MaxListDays=366，实际=%d", cfg.Timetable.MaxListDays)
	}
	if len(cfg.Timetable.Slots) != len(DefaultSlots()) {
		t.Errorf("期望使用默认时段 %d 个，实际=%d", len(DefaultSlots()), len(cfg.Timetable.Slots))
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TIMETABLE_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")
	t.Setenv("TIMETABLE_SERVER_PORT", "9090")
	t.Setenv("TIMETABLE_TIMETABLE_MAX_BULK_DELETE", "20")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 Port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Timetable.MaxBulkDelete != 20 {
		t.Errorf("期望 MaxBulkDelete=20，实际=%d", cfg.Timetable.MaxBulkDelete)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("TIMETABLE_AUTH_JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Fatal("缺少 jwt_secret 时应返回错误")
	}
}

func TestValidate_SlotTolerance(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 8080},
		Auth:      AuthConfig{JWTSecret: "0123456789abcdef"},
		Timetable: TimetableConfig{SlotTolerance: time.Hour, MaxBulkDelete: 10, MaxListDays: 31},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("slot_tolerance 超过 30m 时应校验失败")
	}
}

func TestValidate_MaxListDays(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 8080},
		Auth:      AuthConfig{JWTSecret: "0123456789abcdef"},
		Timetable: TimetableConfig{SlotTolerance: 5 * time.Minute, MaxBulkDelete: 10},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("max_list_days 为 0 时应校验失败")
	}
}

package services

import (
	"testing"
)

func TestLLMConfigCreate_MasksKey(t *testing.T) {
	svc := NewLLMConfigService(setupTestDB(t))

	cfg, err := svc.Create(&CreateLLMConfigRequest{
		Name:     "primary",
		Provider: "openai",
		APIKey:   "sk-1234567890abcdef",
		Model:    "gpt-4",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if cfg.APIKeyMask == "" || cfg.APIKeyMask == cfg.APIKey {
		t.Errorf("APIKeyMask = %q, key must be masked", cfg.APIKeyMask)
	}
	if cfg.APIKeyMask != "sk-1****cdef" {
		t.Errorf("APIKeyMask = %q", cfg.APIKeyMask)
	}
}

func TestLLMConfigCreate_DefaultProvider(t *testing.T) {
	svc := NewLLMConfigService(setupTestDB(t))

	cfg, _ := svc.Create(&CreateLLMConfigRequest{Name: "x", APIKey: "k-123456789", Model: "m"})
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, expected openai default", cfg.Provider)
	}
}

func TestLLMConfig_SingleDefault(t *testing.T) {
	svc := NewLLMConfigService(setupTestDB(t))

	first, _ := svc.Create(&CreateLLMConfigRequest{
		Name: "first", APIKey: "k-111111111", Model: "gpt-4", IsDefault: true, IsActive: true,
	})
	second, _ := svc.Create(&CreateLLMConfigRequest{
		Name: "second", APIKey: "k-222222222", Model: "claude-sonnet-4-5", Provider: "anthropic", IsDefault: true, IsActive: true,
	})

	got1, _ := svc.GetByID(first.ID)
	got2, _ := svc.GetByID(second.ID)
	if got1.IsDefault {
		t.Error("first config should lose default when second claims it")
	}
	if !got2.IsDefault {
		t.Error("second config should be default")
	}
}

func TestLLMConfig_OrderedActive(t *testing.T) {
	svc := NewLLMConfigService(setupTestDB(t))

	svc.Create(&CreateLLMConfigRequest{Name: "backup", APIKey: "k-111111111", Model: "m1", IsActive: true})
	svc.Create(&CreateLLMConfigRequest{Name: "inactive", APIKey: "k-222222222", Model: "m2", IsActive: false})
	svc.Create(&CreateLLMConfigRequest{Name: "main", APIKey: "k-333333333", Model: "m3", IsActive: true, IsDefault: true})

	configs, err := svc.OrderedActive()
	if err != nil {
		t.Fatalf("OrderedActive failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("got %d active configs, expected 2", len(configs))
	}
	if configs[0].Name != "main" {
		t.Errorf("first config = %q, default must come first", configs[0].Name)
	}
}

func TestLLMConfigUpdateAndDelete(t *testing.T) {
	svc := NewLLMConfigService(setupTestDB(t))

	cfg, _ := svc.Create(&CreateLLMConfigRequest{Name: "cfg", APIKey: "k-123456789", Model: "old", IsActive: true})

	updated, err := svc.Update(cfg.ID, &UpdateLLMConfigRequest{Model: "new"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Model != "new" {
		t.Errorf("Model = %q, expected new", updated.Model)
	}

	if err := svc.Delete(cfg.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.GetByID(cfg.ID); err == nil {
		t.Error("deleted config still readable")
	}
	if err := svc.Delete(cfg.ID); err == nil {
		t.Error("double delete should report not found")
	}
}

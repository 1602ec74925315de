package vkinit_test

import (
	"reflect"
	"testing"

	"github.com/gobuffalo/envy"
	"github.com/sirupsen/logrus"

	"github.com/vkwalk/vkwalk/vkinit"
)

func TestParseConfigDefaults(t *testing.T) {
	envy.Temp(func() {
		envy.Set("VKWALK_DEBUG", "false")
		envy.Set("VKWALK_LOG_LEVEL", "info")
		envy.Set("VKWALK_LAYERS", "")

		cfg, err := vkinit.ParseConfig("vkwalk", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Debug {
			t.Error("debug should be off by default")
		}
		if cfg.LogLevel != logrus.InfoLevel {
			t.Errorf("expected info level, got %s", cfg.LogLevel)
		}
		if len(cfg.Layers) != 0 {
			t.Errorf("expected no extra layers, got %v", cfg.Layers)
		}
		if layers := cfg.ValidationLayers(); len(layers) != 0 {
			t.Errorf("expected no validation layers, got %v", layers)
		}
	})
}

func TestParseConfigFlags(t *testing.T) {
	envy.Temp(func() {
		envy.Set("VKWALK_DEBUG", "false")
		envy.Set("VKWALK_LOG_LEVEL", "info")
		envy.Set("VKWALK_LAYERS", "")

		cfg, err := vkinit.ParseConfig("vkwalk", []string{
			"-debug",
			"-layers", "VK_LAYER_LUNARG_api_dump, VK_LAYER_MESA_overlay",
			"-log-level", "warning",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.Debug {
			t.Error("expected debug on")
		}
		if cfg.LogLevel != logrus.DebugLevel {
			t.Errorf("debug mode should raise logging to debug, got %s", cfg.LogLevel)
		}
		wantLayers := []string{"VK_LAYER_LUNARG_api_dump", "VK_LAYER_MESA_overlay"}
		if !reflect.DeepEqual(cfg.Layers, wantLayers) {
			t.Errorf("expected layers %v, got %v", wantLayers, cfg.Layers)
		}
	})
}

func TestParseConfigLogLevel(t *testing.T) {
	envy.Temp(func() {
		envy.Set("VKWALK_DEBUG", "false")
		envy.Set("VKWALK_LOG_LEVEL", "info")
		envy.Set("VKWALK_LAYERS", "")

		cfg, err := vkinit.ParseConfig("vkwalk", []string{"-log-level", "warning"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.LogLevel != logrus.WarnLevel {
			t.Errorf("expected warning level, got %s", cfg.LogLevel)
		}
	})
}

func TestParseConfigBadLevel(t *testing.T) {
	envy.Temp(func() {
		envy.Set("VKWALK_LOG_LEVEL", "info")

		_, err := vkinit.ParseConfig("vkwalk", []string{"-log-level", "shouty"})
		if err == nil {
			t.Fatal("expected an error for an unknown log level")
		}
	})
}

func TestParseConfigEnvironment(t *testing.T) {
	envy.Temp(func() {
		envy.Set("VKWALK_DEBUG", "1")
		envy.Set("VKWALK_LOG_LEVEL", "info")
		envy.Set("VKWALK_LAYERS", "VK_LAYER_LUNARG_api_dump")

		cfg, err := vkinit.ParseConfig("vkwalk", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.Debug {
			t.Error("expected VKWALK_DEBUG=1 to turn debug on")
		}
		if cfg.LogLevel != logrus.DebugLevel {
			t.Errorf("debug mode should raise logging to debug, got %s", cfg.LogLevel)
		}
		wantLayers := []string{"VK_LAYER_LUNARG_api_dump"}
		if !reflect.DeepEqual(cfg.Layers, wantLayers) {
			t.Errorf("expected layers %v, got %v", wantLayers, cfg.Layers)
		}
	})
}

func TestValidationLayers(t *testing.T) {
	cfg := vkinit.Config{
		Debug:  true,
		Layers: []string{"VK_LAYER_LUNARG_api_dump", "VK_LAYER_KHRONOS_validation"},
	}

	want := []string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_LUNARG_api_dump"}
	if got := cfg.ValidationLayers(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestValidationLayersNoDebug(t *testing.T) {
	cfg := vkinit.Config{
		Layers: []string{"VK_LAYER_LUNARG_api_dump"},
	}

	want := []string{"VK_LAYER_LUNARG_api_dump"}
	if got := cfg.ValidationLayers(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

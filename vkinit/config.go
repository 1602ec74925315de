// Package vkinit carries the scaffolding every stage program shares:
// configuration, logging, instance and device bootstrap, swapchain
// construction, and the buffer and image helpers the later stages lean
// on.
package vkinit

import (
	"flag"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/sirupsen/logrus"
)

const khronosValidationLayer = "VK_LAYER_KHRONOS_validation"

// Config carries the settings shared by every stage. Values come from
// VKWALK_* environment variables with command-line flags taking
// precedence.
type Config struct {
	// Debug turns on the Khronos validation layer and the debug
	// messenger, and raises logging to at least debug severity.
	Debug bool
	// LogLevel gates emitted log lines.
	LogLevel logrus.Level
	// Layers are additional validation layers to enable.
	Layers []string
}

// ParseConfig reads environment defaults and then the given
// command-line arguments. name labels the flag set in usage output.
func ParseConfig(name string, args []string) (Config, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	debug := flags.Bool("debug", envBool("VKWALK_DEBUG"), "enable validation layers and debug output")
	layers := flags.String("layers", envy.Get("VKWALK_LAYERS", ""), "comma separated additional validation layers")
	level := flags.String("log-level", envy.Get("VKWALK_LOG_LEVEL", "info"), "log severity (trace, debug, info, warning, error)")

	err := flags.Parse(args)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Debug: *debug}

	cfg.LogLevel, err = logrus.ParseLevel(*level)
	if err != nil {
		return Config{}, err
	}
	if cfg.Debug && cfg.LogLevel < logrus.DebugLevel {
		cfg.LogLevel = logrus.DebugLevel
	}

	for _, layer := range strings.Split(*layers, ",") {
		layer = strings.TrimSpace(layer)
		if layer != "" {
			cfg.Layers = append(cfg.Layers, layer)
		}
	}

	return cfg, nil
}

// ValidationLayers lists the layers to enable at instance creation:
// the Khronos layer first when debugging, then the configured extras.
// Duplicates are dropped.
func (c Config) ValidationLayers() []string {
	var layers []string
	if c.Debug {
		layers = append(layers, khronosValidationLayer)
	}
	for _, layer := range c.Layers {
		if !containsString(layers, layer) {
			layers = append(layers, layer)
		}
	}
	return layers
}

func containsString(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(envy.Get(key, "false"))
	if err != nil {
		return false
	}
	return value
}

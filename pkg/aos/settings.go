package aos

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

// Defaults applied by [New] before any settings are merged.
const (
	// DefaultRootMargin biases the trigger line 120px above the bottom
	// edge so elements animate before they fully reach the viewport.
	DefaultRootMargin = "0px 0px -120px 0px"
	// DefaultThreshold triggers on any overlap.
	DefaultThreshold = 0.0
	// DefaultStartEvent defers observer construction until the document
	// is ready.
	DefaultStartEvent = dom.EventDOMContentLoaded
	// DefaultAnimatedClassName marks elements whose animation is active.
	DefaultAnimatedClassName = "aos-animate"
	// DefaultInitClassName marks elements the engine has prepared.
	DefaultInitClassName = "aos-init"
	// DefaultResizeDebounce is the trailing-edge window for
	// resize-triggered rebuilds.
	DefaultResizeDebounce = 150 * time.Millisecond
)

// Options are the engine-wide defaults. Per-element data-aos-* attributes
// override RootMargin, Threshold, and Once individually.
type Options struct {
	RootMargin              string
	Threshold               float64
	Once                    bool
	StartEvent              string
	AnimatedClassName       string
	InitClassName           string
	UseClassNames           bool
	DisableMutationObserver bool
}

func defaultOptions() Options {
	return Options{
		RootMargin:        DefaultRootMargin,
		Threshold:         DefaultThreshold,
		Once:              false,
		StartEvent:        DefaultStartEvent,
		AnimatedClassName: DefaultAnimatedClassName,
		InitClassName:     DefaultInitClassName,
	}
}

// Setting overrides one engine option. Init applies the given settings
// over the current options, so re-initializing merges: only the provided
// keys change.
type Setting func(*Options)

// WithRootMargin sets the default root margin (CSS margin shorthand).
func WithRootMargin(margin string) Setting {
	return func(o *Options) { o.RootMargin = margin }
}

// WithThreshold sets the default intersection threshold (0-1).
func WithThreshold(t float64) Setting {
	return func(o *Options) { o.Threshold = t }
}

// WithOnce makes animations latch after the first trigger by default.
func WithOnce(once bool) Setting {
	return func(o *Options) { o.Once = once }
}

// WithStartEvent names the document event that starts the engine.
func WithStartEvent(event string) Setting {
	return func(o *Options) { o.StartEvent = event }
}

// WithAnimatedClassName sets the class applied on enter.
func WithAnimatedClassName(name string) Setting {
	return func(o *Options) { o.AnimatedClassName = name }
}

// WithInitClassName sets the class applied at prepare time. An empty name
// disables the init class.
func WithInitClassName(name string) Setting {
	return func(o *Options) { o.InitClassName = name }
}

// WithUseClassNames additionally applies the data-aos attribute value
// (whitespace-split) as animation classes.
func WithUseClassNames(use bool) Setting {
	return func(o *Options) { o.UseClassNames = use }
}

// WithMutationObserverDisabled turns off re-scanning on DOM mutation.
func WithMutationObserverDisabled(disabled bool) Setting {
	return func(o *Options) { o.DisableMutationObserver = disabled }
}

// settingsFile is the YAML shape for LoadSettings. Pointer fields
// distinguish "absent" from zero values so a file only overrides what it
// names, matching Init's merge semantics.
type settingsFile struct {
	RootMargin              *string  `yaml:"rootMargin"`
	Threshold               *float64 `yaml:"threshold"`
	Once                    *bool    `yaml:"once"`
	StartEvent              *string  `yaml:"startEvent"`
	AnimatedClassName       *string  `yaml:"animatedClassName"`
	InitClassName           *string  `yaml:"initClassName"`
	UseClassNames           *bool    `yaml:"useClassNames"`
	DisableMutationObserver *bool    `yaml:"disableMutationObserver"`
}

// LoadSettings reads engine settings from a YAML file. The result feeds
// straight into [Coordinator.Init].
func LoadSettings(path string) ([]Setting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("aos: read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings parses YAML settings data. Unknown keys are rejected.
func ParseSettings(data []byte) ([]Setting, error) {
	var f settingsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("aos: parse settings: %w", err)
	}

	var settings []Setting
	if f.RootMargin != nil {
		settings = append(settings, WithRootMargin(*f.RootMargin))
	}
	if f.Threshold != nil {
		settings = append(settings, WithThreshold(*f.Threshold))
	}
	if f.Once != nil {
		settings = append(settings, WithOnce(*f.Once))
	}
	if f.StartEvent != nil {
		settings = append(settings, WithStartEvent(*f.StartEvent))
	}
	if f.AnimatedClassName != nil {
		settings = append(settings, WithAnimatedClassName(*f.AnimatedClassName))
	}
	if f.InitClassName != nil {
		settings = append(settings, WithInitClassName(*f.InitClassName))
	}
	if f.UseClassNames != nil {
		settings = append(settings, WithUseClassNames(*f.UseClassNames))
	}
	if f.DisableMutationObserver != nil {
		settings = append(settings, WithMutationObserverDisabled(*f.DisableMutationObserver))
	}
	return settings, nil
}

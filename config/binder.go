package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Binder decodes raw maps into tagged structs and validates the result.
//
// Decoding uses mapstructure with the `config` tag, weak typing ("8080" into
// an int) and hooks for durations ("5s") and comma-separated slices. Validation
// uses the `validate` tag rules of go-playground/validator.
//
//	type ServerConfig struct {
//	    Addr    string        `config:"addr" validate:"required"`
//	    Timeout time.Duration `config:"timeout"`
//	}
type Binder struct {
	validator *validator.Validate
}

// BindError reports which stage of Bind failed.
type BindError struct {
	// Stage is "decode" or "validate".
	Stage string
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Stage, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// NewBinder returns a Binder whose validation errors name fields by their
// `config` key, so a failure reads "Root.server.addr" rather than
// "Root.Server.Addr".
func NewBinder() *Binder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("config"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return &Binder{validator: v}
}

// Bind decodes source into target, a pointer to a struct, then validates it.
// On a validate failure target stays populated with the decoded values.
func (b *Binder) Bind(source map[string]any, target any) error {
	if err := b.decode(source, target); err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := b.validator.Struct(target); err != nil {
		return &BindError{Stage: "validate", Err: err}
	}
	return nil
}

func (b *Binder) decode(source map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		TagName: "config",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(source)
}

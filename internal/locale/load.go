package locale

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var presetFiles embed.FS

// Format is the serialization of a profile document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ProfileError reports a profile that cannot be loaded or is inconsistent.
type ProfileError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ProfileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("locale profile %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("locale profile %s: %s", e.Source, e.Message)
}

func (e *ProfileError) Unwrap() error {
	return e.Cause
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("fieldpath", func(fl validator.FieldLevel) bool {
		_, err := ParseFieldPath(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		return types.Mode(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks the profile's struct constraints.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ProfileError{
				Source:  p.Name,
				Message: fmt.Sprintf("field %s failed %q", fe.Namespace(), fe.Tag()),
				Cause:   err,
			}
		}
		return &ProfileError{Source: p.Name, Message: "invalid profile", Cause: err}
	}
	return nil
}

// Parse decodes and validates a profile document.
func Parse(data []byte, format Format, source string) (*Profile, error) {
	var p Profile
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, &ProfileError{Source: source, Message: "failed to parse JSON", Cause: err}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, &ProfileError{Source: source, Message: "failed to parse YAML", Cause: err}
		}
	default:
		return nil, &ProfileError{Source: source, Message: fmt.Sprintf("unsupported format %q", format)}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile reads a profile from disk. Files ending in .json are decoded as
// JSON, everything else as YAML.
func LoadFile(path string) (*Profile, error) {
	if path == "" {
		return nil, &ProfileError{Source: "(empty path)", Message: "profile path is empty"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ProfileError{Source: path, Message: "failed to read file", Cause: err}
	}

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	return Parse(data, format, path)
}

// Preset returns a fresh copy of a built-in profile.
func Preset(name string) (*Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	data, err := presetFiles.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return nil, &ProfileError{
			Source:  name,
			Message: fmt.Sprintf("unknown locale (available: %s)", strings.Join(Presets(), ", ")),
		}
	}
	return Parse(data, FormatYAML, name)
}

// MustPreset is Preset for built-in names known at compile time.
func MustPreset(name string) *Profile {
	p, err := Preset(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Presets lists the built-in profile names.
func Presets() []string {
	entries, err := presetFiles.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve loads path when set, otherwise the named preset.
func Resolve(name, path string) (*Profile, error) {
	if path != "" {
		return LoadFile(path)
	}
	if name == "" {
		name = "en"
	}
	return Preset(name)
}

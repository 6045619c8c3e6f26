package mockup

import (
	"reflect"

	"github.com/apex/log"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"github.com/askiada/go-mockup/pkg/engine"
	"github.com/askiada/go-mockup/pkg/evaluator"
)

const (
	// PluginName identifies the stage in errors.
	PluginName = "mockup"

	DefaultTemplateProperty  = "template"
	DefaultTemplateDirectory = "."
)

// Config holds the settings of a Transform. It is read-only once the Transform is built.
type Config struct {
	// TemplateProperty is the path of the template name inside the evaluated data: a dotted path ("meta.layout"),
	// with optional indexes ("pages[0].layout"), or a JSON pointer ("/meta/layout").
	TemplateProperty string `mapstructure:"templateProperty" yaml:"templateProperty"`
	// TemplateDirectories are the roots templates are searched under.
	TemplateDirectories []string `mapstructure:"templateDirectories" yaml:"templateDirectories"`
	// EngineOptions configure the default engine. Ignored when Engine is set.
	EngineOptions engine.Options `mapstructure:"engineOptions" yaml:"engineOptions"`
	// Engine replaces the default engine. TemplateDirectories and EngineOptions are then unused.
	Engine engine.Engine `mapstructure:"prebuiltEngine" yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		TemplateProperty:    DefaultTemplateProperty,
		TemplateDirectories: []string{DefaultTemplateDirectory},
	}
}

type settings struct {
	Config

	name      string
	logger    log.Interface
	evaluator evaluator.Evaluator
}

// Option configures a Transform.
type Option func(s *settings)

// WithTemplateProperty sets the path of the template name inside the evaluated data.
func WithTemplateProperty(property string) Option {
	return func(s *settings) {
		s.TemplateProperty = property
	}
}

// WithTemplateDirectories sets the template search roots.
func WithTemplateDirectories(dirs ...string) Option {
	return func(s *settings) {
		s.TemplateDirectories = dirs
	}
}

// WithEngineOptions configures the default engine.
func WithEngineOptions(opts engine.Options) Option {
	return func(s *settings) {
		s.EngineOptions = opts
	}
}

// WithEngine uses eng instead of building the default engine.
func WithEngine(eng engine.Engine) Option {
	return func(s *settings) {
		s.Engine = eng
	}
}

// WithEvaluator replaces the default evaluator registry.
func WithEvaluator(ev evaluator.Evaluator) Option {
	return func(s *settings) {
		s.evaluator = ev
	}
}

// WithLogger sets the logger receiving the status lines.
func WithLogger(logger log.Interface) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithName overrides the plugin name carried by errors.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.Config = cfg
	}
}

// aliases maps legacy option names to their canonical name. Order matters: a later alias of the same canonical
// name wins.
var aliases = []struct {
	alias     string
	canonical string
}{
	{"tplProp", "templateProperty"},
	{"tplDir", "templateDirectories"},
	{"nunjucksOptions", "engineOptions"},
	{"njkOpts", "engineOptions"},
	{"nunjucksEnvironment", "prebuiltEngine"},
	{"njkEnv", "prebuiltEngine"},
}

// normalizeAliases returns a copy of raw where present, non-empty aliases replace their canonical key. Aliases are
// removed from the copy.
func normalizeAliases(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		out[key] = value
	}

	for _, a := range aliases {
		value, ok := out[a.alias]
		if !ok {
			continue
		}
		if !isEmpty(value) {
			out[a.canonical] = value
		}
		delete(out, a.alias)
	}

	return out
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}

	val := reflect.ValueOf(value)
	switch val.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return val.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return val.IsNil()
	default:
		return false
	}
}

// DecodeConfig builds a Config from a loose options mapping such as a decoded YAML document. A string is accepted
// where a list of directories is expected. Unknown keys are ignored.
func DecodeConfig(raw map[string]any) (Config, error) {
	cfg := DefaultConfig()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, errors.Wrap(err, "unable to create options decoder")
	}

	err = decoder.Decode(normalizeAliases(raw))
	if err != nil {
		return cfg, errors.Wrap(err, "unable to decode options")
	}

	return cfg, nil
}

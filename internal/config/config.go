// Package config loads the settings of dvpublish.
//
// Settings live under the "config" table of a file named config in any format viper reads, e.g.
//
//	[config]
//	server_url = "https://demo.dataverse.org"
//	api_key = "..."
//	parent_collection = "root"
//
// Every key can be overridden from the environment, e.g. DVPUBLISH_CONFIG_API_KEY.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/askiada/dvpublish/pkg/archive"
	"github.com/askiada/dvpublish/pkg/publish/model"
	"github.com/askiada/dvpublish/pkg/repository"
)

const (
	// AppName is the application name.
	AppName = "dvpublish"
	// FileName is the name of the config file, without extension.
	FileName = "config"
	// Section is the table holding the settings.
	Section = "config"
	// EnvPrefix prefixes the environment variables overriding the settings.
	EnvPrefix = "DVPUBLISH"
	// DefaultTemplate is the template path used when none is configured.
	DefaultTemplate = "create-dataset.json"
)

const (
	keyServerURL        = Section + ".server_url"
	keyAPIKey           = Section + ".api_key"
	keyParentCollection = Section + ".parent_collection"
	keyTemplate         = Section + ".template"
	keyArchiveDir       = Section + ".archive_dir"
	keyArchiveName      = Section + ".archive_name"
	keyTimeout          = Section + ".timeout"
)

// Config holds the settings of a publish run.
type Config struct {
	ServerURL        string        `mapstructure:"server_url"`
	APIKey           string        `mapstructure:"api_key"`
	ParentCollection string        `mapstructure:"parent_collection"`
	Template         string        `mapstructure:"template"`
	ArchiveDir       string        `mapstructure:"archive_dir"`
	ArchiveName      string        `mapstructure:"archive_name"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type document struct {
	Config Config `mapstructure:"config"`
}

// LoadOptions tells Load where to look for the config file.
type LoadOptions struct {
	// FilePath is used exclusively when set, and must exist.
	FilePath string
	// Dir is searched for a file named FileName when FilePath is empty. Defaults to the working directory.
	Dir string
}

// Load reads the configuration. A missing config file is not an error as long as the
// required settings come from the environment.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault(keyServerURL, "")
	v.SetDefault(keyAPIKey, "")
	v.SetDefault(keyParentCollection, "")
	v.SetDefault(keyTemplate, DefaultTemplate)
	v.SetDefault(keyArchiveDir, ".")
	v.SetDefault(keyArchiveName, archive.DefaultName)
	v.SetDefault(keyTimeout, time.Duration(0))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := readFile(v, opts)
	if err != nil {
		return nil, err
	}

	var doc document

	err = v.Unmarshal(&doc)
	if err != nil {
		return nil, model.WrapError(model.KindConfiguration, err, "unable to decode configuration")
	}

	cfg := doc.Config

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readFile(v *viper.Viper, opts LoadOptions) error {
	if opts.FilePath != "" {
		if _, err := os.Stat(opts.FilePath); err != nil {
			return model.WrapError(model.KindConfiguration, err, "missing config file "+opts.FilePath)
		}

		v.SetConfigFile(opts.FilePath)

		err := v.ReadInConfig()
		if err != nil {
			return model.WrapError(model.KindConfiguration, err, "unable to read config file "+opts.FilePath)
		}

		return nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	v.SetConfigName(FileName)
	v.AddConfigPath(dir)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return model.WrapError(model.KindConfiguration, err, "unable to read config file")
	}

	return nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	missing := []string{}

	for _, setting := range []struct{ key, value string }{
		{keyServerURL, c.ServerURL},
		{keyAPIKey, c.APIKey},
		{keyParentCollection, c.ParentCollection},
	} {
		if strings.TrimSpace(setting.value) == "" {
			missing = append(missing, setting.key)
		}
	}

	if len(missing) > 0 {
		return model.NewError(model.KindConfiguration, "missing configuration keys: %s", strings.Join(missing, ", "))
	}

	if c.Timeout < 0 {
		return model.NewError(model.KindConfiguration, "%s cannot be negative", keyTimeout)
	}

	return nil
}

// Repository returns the settings of the repository client.
func (c *Config) Repository() repository.Config {
	return repository.Config{
		BaseURL: c.ServerURL,
		APIKey:  c.APIKey,
		Timeout: c.Timeout,
	}
}

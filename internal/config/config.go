// Package config loads pipeline settings from an optional YAML file and the
// environment through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Lllllllleong/researchpipeline/internal/retry"
)

// EnvPrefix prefixes every environment variable, e.g. PIPELINE_API_KEY.
const EnvPrefix = "PIPELINE"

type Config struct {
	GCP      GCPConfig      `mapstructure:"gcp"`
	Models   ModelsConfig   `mapstructure:"models"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Retry    RetryConfig    `mapstructure:"retry"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	API      APIConfig      `mapstructure:"api"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type GCPConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Region    string `mapstructure:"region"`
}

type ModelsConfig struct {
	Core        string  `mapstructure:"core"`
	Small       string  `mapstructure:"small"`
	Temperature float32 `mapstructure:"temperature"`
	Concurrency int     `mapstructure:"concurrency"`
}

type StorageConfig struct {
	// ProvisionScheme is where runs without a documents base get a new one:
	// gs, az or file.
	ProvisionScheme string `mapstructure:"provision_scheme"`
	// Location is the GCS bucket location used when provisioning.
	Location string `mapstructure:"location"`
	// LocalRoot is the parent of provisioned local bases.
	LocalRoot string `mapstructure:"local_root"`
	// AzureAccountURL enables az:// bases, e.g.
	// https://account.blob.core.windows.net/.
	AzureAccountURL string `mapstructure:"azure_account_url"`
}

// RetryConfig holds one policy per retried concern.
type RetryConfig struct {
	Task     retry.Policy `mapstructure:"task"`
	Stage    retry.Policy `mapstructure:"stage"`
	Transfer retry.Policy `mapstructure:"transfer"`
	Webhook  retry.Policy `mapstructure:"webhook"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type TrackingConfig struct {
	Backend    string `mapstructure:"backend"`
	Collection string `mapstructure:"collection"`
}

type APIConfig struct {
	Key  string `mapstructure:"key"`
	Port int    `mapstructure:"port"`
}

type DispatchConfig struct {
	Mode       string `mapstructure:"mode"`
	WorkflowID string `mapstructure:"workflow_id"`
	Location   string `mapstructure:"location"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	TrackingMemory    = "memory"
	TrackingFirestore = "firestore"

	DispatchLocal     = "local"
	DispatchWorkflows = "workflows"
)

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		GCP: GCPConfig{Region: "us-central1"},
		Models: ModelsConfig{
			Core:        "gemini-2.5-flash",
			Small:       "gemini-2.5-flash-lite",
			Temperature: 0.2,
			Concurrency: 8,
		},
		Storage: StorageConfig{
			ProvisionScheme: "gs",
			Location:        "US",
			LocalRoot:       "projects",
		},
		Retry: RetryConfig{
			Task:     retry.Policy{Attempts: 3, Delay: 5 * time.Second},
			Stage:    retry.Policy{Attempts: 2, Delay: 30 * time.Second},
			Transfer: retry.Policy{Attempts: 3, Delay: 2 * time.Second},
			Webhook:  retry.Policy{Attempts: 3, Delay: 5 * time.Second},
		},
		HTTP:     HTTPConfig{Timeout: 60 * time.Second},
		Tracking: TrackingConfig{Backend: TrackingMemory, Collection: "pipelineRuns"},
		API:      APIConfig{Port: 8080},
		Dispatch: DispatchConfig{Mode: DispatchLocal, WorkflowID: "research-pipeline", Location: "us-central1"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
}

// NewViper returns a viper instance carrying the defaults and bound to the
// environment. Besides PIPELINE_<SECTION>_<KEY>, the plain variable names
// used by the Cloud Functions deployments are honoured.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault("gcp.project_id", d.GCP.ProjectID)
	v.SetDefault("gcp.region", d.GCP.Region)

	v.SetDefault("models.core", d.Models.Core)
	v.SetDefault("models.small", d.Models.Small)
	v.SetDefault("models.temperature", d.Models.Temperature)
	v.SetDefault("models.concurrency", d.Models.Concurrency)

	v.SetDefault("storage.provision_scheme", d.Storage.ProvisionScheme)
	v.SetDefault("storage.location", d.Storage.Location)
	v.SetDefault("storage.local_root", d.Storage.LocalRoot)
	v.SetDefault("storage.azure_account_url", d.Storage.AzureAccountURL)

	for name, p := range map[string]retry.Policy{
		"task":     d.Retry.Task,
		"stage":    d.Retry.Stage,
		"transfer": d.Retry.Transfer,
		"webhook":  d.Retry.Webhook,
	} {
		v.SetDefault("retry."+name+".attempts", p.Attempts)
		v.SetDefault("retry."+name+".delay", p.Delay)
	}

	v.SetDefault("http.timeout", d.HTTP.Timeout)

	v.SetDefault("tracking.backend", d.Tracking.Backend)
	v.SetDefault("tracking.collection", d.Tracking.Collection)

	v.SetDefault("api.key", d.API.Key)
	v.SetDefault("api.port", d.API.Port)

	v.SetDefault("dispatch.mode", d.Dispatch.Mode)
	v.SetDefault("dispatch.workflow_id", d.Dispatch.WorkflowID)
	v.SetDefault("dispatch.location", d.Dispatch.Location)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("gcp.project_id", EnvPrefix+"_GCP_PROJECT_ID", "PROJECT_ID")
	_ = v.BindEnv("gcp.region", EnvPrefix+"_GCP_REGION", "VERTEX_AI_REGION")
	_ = v.BindEnv("tracking.collection", EnvPrefix+"_TRACKING_COLLECTION", "FIRESTORE_COLLECTION")
	_ = v.BindEnv("dispatch.workflow_id", EnvPrefix+"_DISPATCH_WORKFLOW_ID", "WORKFLOW_ID")
	_ = v.BindEnv("dispatch.location", EnvPrefix+"_DISPATCH_LOCATION", "WORKFLOW_LOCATION")
	_ = v.BindEnv("api.key", EnvPrefix+"_API_KEY", "API_KEY")
	_ = v.BindEnv("api.port", EnvPrefix+"_API_PORT", "PORT")
	return v
}

// Load reads file (when non-empty) into v, unmarshals and validates.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// FromEnv loads the configuration from the environment only.
func FromEnv() (*Config, error) {
	return Load(NewViper(), "")
}

// AsValidationErrors extracts the validation failures from err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var errs ValidationErrors
	ok := errors.As(err, &errs)
	return errs, ok
}

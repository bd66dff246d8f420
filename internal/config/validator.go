package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Lllllllleong/researchpipeline/internal/retry"
)

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting found.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

var (
	validLogLevels       = []string{"debug", "info", "warn", "error"}
	validLogFormats      = []string{"json", "text"}
	validProvisionScheme = []string{"gs", "az", "file"}
	validTracking        = []string{TrackingMemory, TrackingFirestore}
	validDispatch        = []string{DispatchLocal, DispatchWorkflows}
)

// Validate returns every invalid or inconsistent setting.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field string, value any, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
	}
	oneOf := func(field, value string, valid []string) {
		if !slices.Contains(valid, strings.ToLower(value)) {
			add(field, value, "must be one of: %s", strings.Join(valid, ", "))
		}
	}

	if c.Models.Core == "" {
		add("models.core", c.Models.Core, "must not be empty")
	}
	if c.Models.Small == "" {
		add("models.small", c.Models.Small, "must not be empty")
	}
	if c.Models.Temperature < 0 || c.Models.Temperature > 2 {
		add("models.temperature", c.Models.Temperature, "must be between 0 and 2")
	}
	if c.Models.Concurrency < 1 {
		add("models.concurrency", c.Models.Concurrency, "must be at least 1")
	}

	oneOf("storage.provision_scheme", c.Storage.ProvisionScheme, validProvisionScheme)
	switch c.Storage.ProvisionScheme {
	case "az":
		if c.Storage.AzureAccountURL == "" {
			add("storage.azure_account_url", c.Storage.AzureAccountURL, "required when provisioning on Azure")
		}
	case "file":
		if c.Storage.LocalRoot == "" {
			add("storage.local_root", c.Storage.LocalRoot, "required when provisioning locally")
		}
	}

	for name, p := range map[string]retry.Policy{
		"retry.task":     c.Retry.Task,
		"retry.stage":    c.Retry.Stage,
		"retry.transfer": c.Retry.Transfer,
		"retry.webhook":  c.Retry.Webhook,
	} {
		if p.Attempts < 1 {
			add(name+".attempts", p.Attempts, "must be at least 1")
		}
		if p.Delay < 0 {
			add(name+".delay", p.Delay, "must not be negative")
		}
	}

	if c.HTTP.Timeout <= 0 {
		add("http.timeout", c.HTTP.Timeout, "must be positive")
	}

	oneOf("tracking.backend", c.Tracking.Backend, validTracking)
	if c.Tracking.Backend == TrackingFirestore && c.Tracking.Collection == "" {
		add("tracking.collection", c.Tracking.Collection, "required for firestore tracking")
	}

	oneOf("dispatch.mode", c.Dispatch.Mode, validDispatch)
	if c.Dispatch.Mode == DispatchWorkflows {
		if c.Dispatch.WorkflowID == "" {
			add("dispatch.workflow_id", c.Dispatch.WorkflowID, "required for workflows dispatch")
		}
		if c.Dispatch.Location == "" {
			add("dispatch.location", c.Dispatch.Location, "required for workflows dispatch")
		}
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		add("api.port", c.API.Port, "must be between 1 and 65535")
	}

	oneOf("logging.level", c.Logging.Level, validLogLevels)
	oneOf("logging.format", c.Logging.Format, validLogFormats)

	if c.GCP.ProjectID == "" && c.needsProject() {
		add("gcp.project_id", c.GCP.ProjectID, "required for gs storage, firestore tracking or workflows dispatch")
	}

	slices.SortFunc(errs, func(a, b ValidationError) int { return strings.Compare(a.Field, b.Field) })
	return errs
}

func (c *Config) needsProject() bool {
	return c.Storage.ProvisionScheme == "gs" ||
		c.Tracking.Backend == TrackingFirestore ||
		c.Dispatch.Mode == DispatchWorkflows
}

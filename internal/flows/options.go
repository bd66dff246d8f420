package flows

import (
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	DefaultCoreModel   = "gemini-2.5-flash"
	DefaultSmallModel  = "gemini-2.5-flash-lite"
	DefaultConcurrency = 8
)

// OutputTarget is where a produced document is delivered with an HTTP PUT.
type OutputTarget struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// UnmarshalJSON accepts either a bare URL string or an object.
func (o *OutputTarget) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = OutputTarget{URL: s}
		return nil
	}

	type plain OutputTarget
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("output target: %w", err)
	}
	*o = OutputTarget(p)
	return nil
}

// Options are the per-run knobs shared by every stage.
type Options struct {
	CoreModel          string                  `json:"core_model,omitempty"`
	SmallModel         string                  `json:"small_model,omitempty"`
	InputDocumentURLs  []string                `json:"input_documents_urls,omitempty"`
	OutputDocumentURLs map[string]OutputTarget `json:"output_documents_urls,omitempty"`
	StatusWebhookURL   string                  `json:"status_webhook_url,omitempty"`
	ReportWebhookURL   string                  `json:"report_webhook_url,omitempty"`
	Concurrency        int                     `json:"concurrency,omitempty"`
}

// DefaultOptions returns options with the default models and concurrency.
func DefaultOptions() Options {
	return Options{
		CoreModel:   DefaultCoreModel,
		SmallModel:  DefaultSmallModel,
		Concurrency: DefaultConcurrency,
	}
}

// WithDefaults fills unset models and concurrency.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.CoreModel == "" {
		o.CoreModel = d.CoreModel
	}
	if o.SmallModel == "" {
		o.SmallModel = d.SmallModel
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
	return o
}

// Validate checks that every URL is absolute http(s).
func (o Options) Validate() error {
	check := func(field, raw string) error {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s: %q is not an http(s) URL", ErrInvalidOptions, field, raw)
		}
		return nil
	}

	for i, raw := range o.InputDocumentURLs {
		if err := check(fmt.Sprintf("input_documents_urls[%d]", i), raw); err != nil {
			return err
		}
	}
	for name, target := range o.OutputDocumentURLs {
		if err := check("output_documents_urls["+name+"]", target.URL); err != nil {
			return err
		}
	}
	if o.StatusWebhookURL != "" {
		if err := check("status_webhook_url", o.StatusWebhookURL); err != nil {
			return err
		}
	}
	if o.ReportWebhookURL != "" {
		if err := check("report_webhook_url", o.ReportWebhookURL); err != nil {
			return err
		}
	}
	return nil
}

// DecodeOptions converts the loosely typed flow_options of a run request into
// validated Options with defaults applied.
func DecodeOptions(raw map[string]any) (Options, error) {
	var o Options
	if len(raw) > 0 {
		data, err := json.Marshal(raw)
		if err != nil {
			return Options{}, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
		if err := json.Unmarshal(data, &o); err != nil {
			return Options{}, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
	}

	o = o.WithDefaults()
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

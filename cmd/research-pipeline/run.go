package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/researchpipeline/internal/models"
)

type runFlags struct {
	project       string
	documents     string
	inputs        []string
	stages        []string
	coreModel     string
	smallModel    string
	statusWebhook string
	reportWebhook string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and print the produced documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := root.app(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Work(ctx, models.WorkerRequest{
				Stages:     f.stages,
				Parameters: f.parameters(),
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.project, "project", "p", "", "project name (required)")
	fl.StringVar(&f.documents, "documents", "", "existing storage base URI (gs://, az://, file:// or a path)")
	fl.StringArrayVar(&f.inputs, "input", nil, "input document URL; repeatable")
	fl.StringSliceVar(&f.stages, "stage", nil, "stage to run; repeatable, default all")
	fl.StringVar(&f.coreModel, "core-model", "", "model for summary, review and report")
	fl.StringVar(&f.smallModel, "small-model", "", "model for standardization")
	fl.StringVar(&f.statusWebhook, "status-webhook", "", "URL notified on every stage transition")
	fl.StringVar(&f.reportWebhook, "report-webhook", "", "URL sent the final documents")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

// parameters maps the flags onto the payload the API and worker accept.
func (f *runFlags) parameters() models.RunParameters {
	opts := map[string]any{}
	if len(f.inputs) > 0 {
		urls := make([]any, len(f.inputs))
		for i, u := range f.inputs {
			urls[i] = u
		}
		opts["input_documents_urls"] = urls
	}
	for key, val := range map[string]string{
		"core_model":         f.coreModel,
		"small_model":        f.smallModel,
		"status_webhook_url": f.statusWebhook,
		"report_webhook_url": f.reportWebhook,
	} {
		if val != "" {
			opts[key] = val
		}
	}
	return models.RunParameters{ProjectName: f.project, Documents: f.documents, FlowOptions: opts}
}


package pipeline

import (
	"github.com/Lllllllleong/researchpipeline/internal/flows"
	"github.com/Lllllllleong/researchpipeline/internal/models"
)

// RequestFromWorker converts a dispatched worker payload into a RunRequest,
// decoding and validating its flow options.
func RequestFromWorker(wr models.WorkerRequest) (RunRequest, error) {
	opts, err := flows.DecodeOptions(wr.Parameters.FlowOptions)
	if err != nil {
		return RunRequest{}, err
	}
	return RunRequest{
		RunID:        wr.RunID,
		DeploymentID: wr.DeploymentID,
		ProjectName:  wr.Parameters.ProjectName,
		Documents:    wr.Parameters.Documents,
		Options:      opts,
		Stages:       wr.Stages,
	}, nil
}

package api

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Lllllllleong/researchpipeline/internal/flows"
	"github.com/Lllllllleong/researchpipeline/internal/models"
)

// PipelineFlow is the flow name of the full pipeline deployment.
const PipelineFlow = "research_pipeline"

// Deployments lists the full pipeline followed by one deployment per stage.
// Ids are stable across processes.
func Deployments(stages []flows.Stage) []models.Deployment {
	out := []models.Deployment{newDeployment(PipelineFlow, "research-pipeline", flows.Names(stages))}
	for _, s := range stages {
		name := strings.ReplaceAll(strings.TrimSuffix(s.Name, "_flow"), "_", "-")
		out = append(out, newDeployment(s.Name, name, []string{s.Name}))
	}
	return out
}

func newDeployment(flowName, name string, stages []string) models.Deployment {
	return models.Deployment{
		ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("research-pipeline/"+flowName+"/"+name)).String(),
		Name:     name,
		FlowName: flowName,
		Stages:   stages,
	}
}

// findDeployment matches "<flow>/<name>", a deployment name or a flow name.
func findDeployment(deployments []models.Deployment, ref string) (models.Deployment, error) {
	var found []models.Deployment
	for _, d := range deployments {
		if ref == d.FlowName+"/"+d.Name || ref == d.Name || ref == d.FlowName || ref == d.ID {
			found = append(found, d)
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return models.Deployment{}, fmt.Errorf("%w: %s", ErrDeploymentNotFound, ref)
	default:
		return models.Deployment{}, fmt.Errorf("%w: %s matches %d deployments", ErrAmbiguousDeployment, ref, len(found))
	}
}

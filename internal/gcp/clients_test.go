package gcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFirestoreClient_RequiresProject(t *testing.T) {
	_, err := NewFirestoreClient(context.Background(), "")
	assert.ErrorContains(t, err, "projectID must be provided")
}

func TestOpen_Nothing(t *testing.T) {
	c, err := Open(context.Background(), Needs{})
	require.NoError(t, err)
	assert.Nil(t, c.Storage)
	assert.Nil(t, c.Firestore)
	assert.Nil(t, c.Executions)
	assert.NoError(t, c.Close())
}

func TestOpen_FirestoreWithoutProject(t *testing.T) {
	_, err := Open(context.Background(), Needs{Firestore: true})
	assert.Error(t, err)
}

package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	testutil "github.com/aristath/breeder/internal/testing"
)

func TestCheckWALCheckpointsJob(t *testing.T) {
	rollers := testutil.NewTestDB(t, "rollers")
	cache := testutil.NewTestDB(t, "cache")

	job := NewCheckWALCheckpointsJob(zerolog.Nop(), rollers, nil, cache)

	assert.Equal(t, "wal_checkpoint", job.Name())
	assert.NoError(t, job.Run())
}

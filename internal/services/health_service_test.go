package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"yamazumi/pkg/contracts"
)

func TestHealthService(t *testing.T) {
	hs := NewHealthService(contracts.Version, nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, contracts.Version, status.Version)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	assert.Equal(t, contracts.Version, hs.Version().Version)
}

package pantryassistant

import (
	"testing"

	"github.com/joeshaw/envdecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewResource(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "pantry-test")
	t.Setenv("OTEL_DEPLOY_ENV", "ci")

	var cfg OtelConfig
	require.NoError(t, envdecode.Decode(&cfg))
	assert.Equal(t, "0.1.0", cfg.ServiceVersion)

	res, err := newResource(cfg, TracerNameLambda)
	require.NoError(t, err)

	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "pantry-test", got["service.name"])
	assert.Equal(t, "0.1.0", got["service.version"])
	assert.Equal(t, "ci", got["deployment.environment"])
	assert.Equal(t, TracerNameLambda, got["pantry.component"])
}

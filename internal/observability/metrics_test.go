package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveLadderCountsByState(t *testing.T) {
	RegisterMetrics()
	counter := stepsRenderedTotal.WithLabelValues("graded", "false")

	before := testutil.ToFloat64(counter)
	ObserveLadder("graded", false)
	ObserveLadder("graded", false)
	require.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMetricsHandlerExposesLadderCounter(t *testing.T) {
	ObserveLadder("submitted", true)
	ObserveCache("miss")

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `submission_steps_rendered_total{collapsed="true",state="submitted"}`)
	require.Contains(t, string(body), `submission_steps_cache_total{result="miss"}`)
}

package response

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKEnvelope(t *testing.T) {
	b, err := json.Marshal(OK(map[string]int{"rows": 6}, "missing kpi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"warnings":["missing kpi"],"data":{"rows":6}}`, string(b))
}

func TestFailure(t *testing.T) {
	b, err := json.Marshal(Failure(errors.New("input file not found")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"input file not found"}`, string(b))
}

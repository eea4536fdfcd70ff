package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.get(t, "/status")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "healthy", body["status"])

	checks := body["checks"].(map[string]interface{})
	bt := checks["bigtable"].(map[string]interface{})
	assert.Equal(t, "healthy", bt["status"])
	assert.Equal(t, "odds", bt["table"])
}

func TestCheckHealth_TableGone(t *testing.T) {
	api := newTestAPI(t)
	require.NoError(t, api.db.Admin.DeleteTable(context.Background(), api.db.TableName()))

	rec, body := api.get(t, "/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])

	bt := body["checks"].(map[string]interface{})["bigtable"].(map[string]interface{})
	assert.Equal(t, "unhealthy", bt["status"])
	assert.NotEmpty(t, bt["error"])
}

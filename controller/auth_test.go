package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"approcciala/model/modeltest"
	"approcciala/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindWorkspace(t *testing.T) {
	store := modeltest.NewStore(t)
	auth := service.NewAuthService(store, service.NewTokenService("test-secret", time.Hour))
	workspaces := service.NewWorkspaces(auth, nil, 10, time.Hour)
	defer workspaces.Close()

	ctx := context.Background()
	session, err := auth.SignUp(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	ws, err := workspaces.Acquire(ctx, session.SessionID, session.AccessToken)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	require.True(t, bindWorkspace(c, ws))
	assert.Equal(t, session.User.ID, c.GetString("UserId"))
	assert.Same(t, ws, workspaceOf(c))

	// signed out after the workspace was resolved
	require.NoError(t, auth.SignOut(ctx, session.AccessToken))

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	assert.False(t, bindWorkspace(c, ws))
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	_, ok := c.Get("workspace")
	assert.False(t, ok)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(service.RouteAuth), body["redirect"])
}

package controller

import (
	"errors"
	"fmt"
	"net/http"

	"approcciala/service"

	"github.com/gin-gonic/gin"
)

// AuthController ...
type AuthController struct {
	auth       *service.AuthService
	tokens     *service.TokenService
	workspaces *service.Workspaces
}

func NewAuthController(auth *service.AuthService, tokens *service.TokenService, workspaces *service.Workspaces) *AuthController {
	return &AuthController{auth: auth, tokens: tokens, workspaces: workspaces}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func sessionBody(event service.AuthEvent, session *service.Session) gin.H {
	return gin.H{
		"token":      session.AccessToken,
		"expires_at": session.ExpiresAt,
		"user":       session.User,
		"redirect":   service.RedirectFor(event, session),
	}
}

func (a *AuthController) SignUp(c *gin.Context) {
	logger.Infof("[%s] Handling sign up request", c.GetString("requestId"))

	var input credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	session, err := a.auth.SignUp(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		logger.Warnf("[%s] Failed to register %s: %s", c.GetString("requestId"), input.Email, err)
		respondError(c, err, "Failed to register user")
		return
	}

	logger.Infof("[%s] User %s registered successfully", c.GetString("requestId"), session.User.ID)
	c.JSON(http.StatusCreated, sessionBody(service.EventSignedIn, session))
}

func (a *AuthController) SignIn(c *gin.Context) {
	logger.Infof("[%s] Handling sign in request", c.GetString("requestId"))

	var input credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	session, err := a.auth.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		logger.Warnf("[%s] User %s failed to login: %s", c.GetString("requestId"), input.Email, err)
		respondError(c, err, "Failed to sign in")
		return
	}

	logger.Infof("[%s] User %s login successfully", c.GetString("requestId"), session.User.ID)
	c.JSON(http.StatusOK, sessionBody(service.EventSignedIn, session))
}

func (a *AuthController) SignOut(c *gin.Context) {
	token := a.tokens.ExtractToken(c.Request)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
		return
	}
	if err := a.auth.SignOut(c.Request.Context(), token); err != nil {
		respondError(c, err, "Failed to sign out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Session reports the session proved by the bearer token, or null.
func (a *AuthController) Session(c *gin.Context) {
	session, err := a.auth.GetSession(c.Request.Context(), a.tokens.ExtractToken(c.Request))
	if err != nil {
		respondError(c, err, "Failed to get session")
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Refresh ...
func (a *AuthController) Refresh(c *gin.Context) {
	session, err := a.auth.Refresh(c.Request.Context(), a.tokens.ExtractToken(c.Request))
	if err != nil {
		respondError(c, err, "Failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": session.AccessToken, "expires_at": session.ExpiresAt})
}

// TokenValid resolves the caller's workspace or aborts with 401.
func (a *AuthController) TokenValid(c *gin.Context) {
	token := a.tokens.ExtractToken(c.Request)
	tokenAuth, err := a.tokens.ExtractTokenMetadata(token)
	if err != nil {
		//Token either expired or not valid
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please login first", "redirect": service.RouteAuth})
		return
	}

	ws, err := a.workspaces.Acquire(c.Request.Context(), tokenAuth.AccessUUID, token)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthorized) {
			logger.Warnf("[%s] session lookup failed: %s", c.GetString("requestId"), err)
		}
		respondError(c, err, "Failed to check session")
		return
	}

	bindWorkspace(c, ws)
}

// bindWorkspace stores ws and its user on c. A session signed out in the
// meantime aborts with 401.
func bindWorkspace(c *gin.Context, ws *service.Workspace) bool {
	user := ws.Session.Current().User
	if user == nil {
		respondError(c, fmt.Errorf("%w: session ended", service.ErrUnauthorized), "Failed to check session")
		return false
	}
	c.Set("workspace", ws)
	c.Set("UserId", user.ID)
	return true
}

func workspaceOf(c *gin.Context) *service.Workspace {
	return c.MustGet("workspace").(*service.Workspace)
}

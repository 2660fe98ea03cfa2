package handler

import (
	"net/http"

	"receipts/internal/middleware"
	"receipts/internal/service"
	"receipts/pkg/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest accepts the OAuth2 password form fields or the same keys as JSON
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler sets up the routing dependencies for auth endpoints
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/auth")
	{
		group.POST("/signup", h.Signup)
		group.POST("/login", h.Login)
		group.GET("/refresh_token", h.RefreshToken)
		group.POST("/logout", middleware.RequireAuth(h.authService), h.Logout)
		group.GET("/me", middleware.RequireAuth(h.authService), h.GetMe)
	}
}

// Signup handles POST /auth/signup
// @Summary      Register a new user
// @Description  Creates an account. Name must be 5-16 characters, password 6-10.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SignupRequest  true  "Signup payload"
// @Success      201      {object}  response.Response{data=service.SignupResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Write(c, http.StatusCreated, user)
}

// Login handles POST /auth/login
// @Summary      Login user
// @Description  Authenticates by login and password, returning an access and a refresh token
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Login"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  response.Response{data=auth.TokenPair}
// @Failure      401       {object}  response.Response
// @Failure      422       {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Write(c, http.StatusOK, pair)
}

// RefreshToken handles GET /auth/refresh_token
// @Summary      Refresh token
// @Description  Rotates both tokens. The bearer token must be the current refresh token; a stale one revokes the session.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=auth.TokenPair}
// @Failure      401  {object}  response.Response
// @Router       /auth/refresh_token [get]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		middleware.AbortUnauthorized(c, "Not authenticated")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Write(c, http.StatusOK, pair)
}

// Logout handles POST /auth/logout
// @Summary      Logout
// @Description  Clears the stored refresh token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if err := h.authService.Logout(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	response.Write(c, http.StatusOK, "Logged out")
}

// GetMe handles GET /auth/me
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	response.Write(c, http.StatusOK, service.MapUserResponse(user))
}

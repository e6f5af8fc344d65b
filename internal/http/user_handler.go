package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodhub/internal/service"
)

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	opts     UserHandlerOptions
}

// UserHandlerOptions ajusta respuestas pensadas sólo para desarrollo.
type UserHandlerOptions struct {
	// ExposeResetLink devuelve el link de reseteo en la respuesta de /user/forget.
	ExposeResetLink bool
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, opts UserHandlerOptions) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		opts:     opts,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register maneja POST /user/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.userServ.BeginRegistration(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		respondError(c, h.logger, err, "register user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
}

// VerifyOTP maneja POST /user/verify-otp.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.userServ.VerifyRegistration(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, h.logger, err, "verify otp")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "token": res.Token, "user": res.User})
}

// Signup maneja POST /user/signup: alta directa sin OTP.
func (h *UserHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.userServ.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "sign up")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "token": res.Token, "user": res.User})
}

// Login maneja POST /user/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.userServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successfully", "token": res.Token, "user": res.User})
}

// Forget maneja POST /user/forget.
func (h *UserHandler) Forget(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid forget request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	link, err := h.userServ.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, h.logger, err, "request password reset")
		return
	}

	// El link sólo viaja por email; quien pide el reseteo no necesariamente es dueño de la casilla.
	resp := gin.H{"message": "Reset link sent"}
	if h.opts.ExposeResetLink {
		resp["link"] = link
	}
	c.JSON(http.StatusOK, resp)
}

// ResetPassword maneja PUT /user/reset-password/:id/:token.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, email, err := h.userServ.ResetPassword(c.Request.Context(), c.Param("id"), c.Param("token"), req.Password)
	if err != nil {
		respondError(c, h.logger, err, "reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password Reset Successfully",
		"email":   email,
		"status":  "verified",
		"user":    user,
	})
}

// Me maneja GET /user/me.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	user, err := h.userServ.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "load user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListUsers maneja GET /user/allusers.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userServ.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data found successfully", "users": users})
}

// GetUser maneja GET /user/getuser/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userServ.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data found successfully", "user": user})
}

// RemoveUser maneja DELETE /user/remove/:id.
func (h *UserHandler) RemoveUser(c *gin.Context) {
	if _, err := h.userServ.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "remove user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully data removed"})
}

// EditUser maneja PUT /user/edit/:id con multipart (username, email, avatar).
func (h *UserHandler) EditUser(c *gin.Context) {
	avatar, closeAvatar, err := formImage(c, "avatar")
	if err != nil {
		respondError(c, h.logger, err, "edit user")
		return
	}
	defer closeAvatar()

	user, err := h.userServ.UpdateProfile(c.Request.Context(), c.Param("id"), service.UpdateProfileInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Avatar:   avatar,
	})
	if err != nil {
		respondError(c, h.logger, err, "edit user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

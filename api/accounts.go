package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wenyfour/rideshare/internal/auth"
	"github.com/wenyfour/rideshare/internal/domain"
	"github.com/wenyfour/rideshare/internal/service/accounts"
)

type AccountHandler struct {
	service accounts.AccountUseCase
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type forgotPasswordResetRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	About       string `json:"about,omitempty"`
	IsActive    bool   `json:"is_active"`
	Picture     string `json:"picture,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func NewAccountHandler(service accounts.AccountUseCase) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterPublic mounts the routes reachable without a session:
// registration, login, mailed-link flows and public intake.
func (h *AccountHandler) RegisterPublic(router *gin.RouterGroup) {
	router.POST("/create", h.create)
	router.POST("/login", h.login)
	router.GET("/verify/:id", h.verify)
	router.POST("/forgot/password", h.forgotPassword)
	router.GET("/reset/:id", h.resetLanding)
	router.POST("/forgot/password/reset", h.forgotPasswordReset)
	router.POST("/contact/us", h.contactUs)
	router.POST("/support", h.support)
}

// RegisterProtected mounts the session-guarded account routes.
func (h *AccountHandler) RegisterProtected(router *gin.RouterGroup) {
	router.GET("/me", h.me)
	router.GET("/all", h.list)
	router.GET("/user/:id", h.get)
	router.PUT("/:id/update", h.update)
	router.PUT("/:id/picture", h.setPicture)
	router.DELETE("/:id/delete", h.remove)
	router.POST("/reset/password", h.resetPassword)
}

func (h *AccountHandler) create(c *gin.Context) {
	var req accounts.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *AccountHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": session.AccessToken,
		"token_type":   session.TokenType,
		"user_id":      session.User.ID,
		"name":         session.User.Name,
		"email":        session.User.Email,
	})
}

func (h *AccountHandler) me(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AccountHandler) get(c *gin.Context) {
	user, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AccountHandler) list(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AccountHandler) update(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	if c.Param("id") != claims.UserID {
		respondError(c, domain.ErrOwnershipMismatch)
		return
	}

	var req accounts.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.service.UpdateProfile(c.Request.Context(), req, claims.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated successfully"})
}

func (h *AccountHandler) setPicture(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	if c.Param("id") != claims.UserID {
		respondError(c, domain.ErrOwnershipMismatch)
		return
	}

	var req struct {
		Picture string `json:"picture"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.service.SetPicture(c.Request.Context(), claims.UserID, req.Picture); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "picture updated successfully"})
}

func (h *AccountHandler) remove(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	if c.Param("id") != claims.UserID {
		respondError(c, domain.ErrOwnershipMismatch)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *AccountHandler) verify(c *gin.Context) {
	err := h.service.VerifyEmail(c.Request.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account verified successfully"})
}

func (h *AccountHandler) resetPassword(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), claims.UserID, req.Password, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user password updated successfully"})
}

func (h *AccountHandler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email sent successfully"})
}

// resetLanding validates a mailed password-reset link. The client
// follows up with the new password on the forgot/password/reset route.
func (h *AccountHandler) resetLanding(c *gin.Context) {
	email, err := h.service.ValidateResetLink(c.Request.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reset link valid", "email": email})
}

func (h *AccountHandler) forgotPasswordReset(c *gin.Context) {
	var req forgotPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.service.ForgotPasswordReset(c.Request.Context(), req.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user password updated successfully"})
}

func (h *AccountHandler) contactUs(c *gin.Context) {
	var req accounts.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.service.ContactUs(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "successfully created"})
}

func (h *AccountHandler) support(c *gin.Context) {
	var req accounts.SupportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.service.Support(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "successfully created"})
}

func toUserResponse(user *domain.User) userResponse {
	resp := userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		About:     user.About,
		IsActive:  user.IsActive,
		Picture:   user.Picture,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.DateOfBirth != nil {
		resp.DateOfBirth = user.DateOfBirth.Format(dateLayout)
	}
	return resp
}

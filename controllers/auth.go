package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"lppm-form-api/middleware"
	"lppm-form-api/models"
	"lppm-form-api/services"

	"github.com/gin-gonic/gin"
)

// Authenticator checks admin credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.Admin, error)
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type AuthController struct {
	auth   Authenticator
	secret string
	ttl    time.Duration
}

func NewAuthController(auth Authenticator, secret string, ttl time.Duration) *AuthController {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthController{auth: auth, secret: secret, ttl: ttl}
}

// Login handles admin authentication from a JSON or urlencoded body.
func (ctl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	err := c.ShouldBind(&req)
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)
	if err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username dan password wajib diisi"})
		return
	}

	admin, err := ctl.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Username atau password salah"})
			return
		}
		log.Printf("admin login failed for %q: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login gagal"})
		return
	}

	token, err := middleware.IssueToken(ctl.secret, admin.Username, ctl.ttl)
	if err != nil {
		log.Printf("sign admin token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login gagal"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresIn: int(ctl.ttl / time.Second)})
}

package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gamenight/pkg/models"
)

type Handler struct {
	Accounts *Accounts
}

func NewHandler(accounts *Accounts) *Handler {
	return &Handler{Accounts: accounts}
}

// RegisterRoutes mounts the public sign-up and sign-in routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register) // POST /auth/register
	rg.POST("/login", h.login)       // POST /auth/login
}

// RegisterUserRoutes mounts the routes of the signed-in account.
func (h *Handler) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.Use(RequireUser(h.Accounts.Tokens, h.Accounts.Repo))
	rg.GET("/me", h.me)
	rg.PUT("/me/bgg", h.linkBGG)
	rg.GET("/me/collection", h.collection)
}

func (h *Handler) register(c *gin.Context) {
	var req Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	s, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionView(s))
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}
	s, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(s))
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, userView(CurrentUser(c)))
}

type linkBGGReq struct {
	BGGName string `json:"bgg_name"`
}

func (h *Handler) linkBGG(c *gin.Context) {
	var req linkBGGReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u := CurrentUser(c)
	info, games, err := h.Accounts.LinkBGG(c.Request.Context(), u, req.BGGName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":       userView(u),
		"collection": summarize(info),
		"games":      len(games),
	})
}

func (h *Handler) collection(c *gin.Context) {
	info, games, err := h.Accounts.Collection(c.Request.Context(), CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if games == nil {
		games = []models.Game{}
	}
	c.JSON(http.StatusOK, gin.H{"collection": info, "games": games})
}

func writeError(c *gin.Context, err error) {
	var invalid *InvalidInputError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Field + " " + invalid.Reason})
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrNotLinked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, ErrNoBGGCollection):
		c.JSON(http.StatusNotFound, gin.H{"error": "bgg collection not found"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "account store unavailable"})
	}
}

func sessionView(s *Session) gin.H {
	return gin.H{
		"user":       userView(s.User),
		"token":      s.Token,
		"expires_at": s.ExpiresAt.UTC().Format(time.RFC3339),
		"collection": s.Collection,
	}
}

func userView(u *User) gin.H {
	return gin.H{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"bgg_name": u.BGGName,
	}
}

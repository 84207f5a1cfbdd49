package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"storegate/internal/apperr"
	"storegate/internal/middleware"
	"storegate/internal/proto/authpb"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type validateRequest struct {
	Token string `json:"token"`
}

func (req registerRequest) validate() []string {
	var problems []string

	if strings.TrimSpace(req.Email) == "" {
		problems = append(problems, "email is required")
	} else if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		problems = append(problems, "email format is invalid")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		problems = append(problems, "first name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		problems = append(problems, "last name is required")
	}
	if req.Password == "" {
		problems = append(problems, "password is required")
	} else if p := passwordProblem(req.Password); p != "" {
		problems = append(problems, p)
	}

	return problems
}

func passwordProblem(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return "password must contain upper and lower case letters and a digit"
	}
	return ""
}

// RegisterUser proxies registration to the auth service after local shape
// validation, so obviously bad requests never cross the wire.
func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.New(apperr.InvalidArgument, "invalid request body"))
		return
	}

	if problems := req.validate(); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":   apperr.InvalidArgument.String(),
			"error":  "validation failed",
			"errors": problems,
		})
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), &authpb.RegisterRequest{
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      req.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.New(apperr.InvalidArgument, "invalid request body"))
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.respondError(c, apperr.New(apperr.InvalidArgument, "email and password required"))
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &authpb.LoginRequest{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) ValidateToken(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		h.respondError(c, apperr.New(apperr.InvalidArgument, "token required"))
		return
	}

	validation, err := h.auth.ValidateToken(c.Request.Context(), req.Token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   validation.Valid,
		"userId":  validation.UserID,
		"email":   validation.Email,
		"role":    validation.Role,
		"exp":     validation.ExpiresAt,
		"message": validation.Message,
	})
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		h.respondError(c, apperr.New(apperr.InvalidArgument, "refresh token required"))
		return
	}

	resp, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) Profile(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		h.respondError(c, apperr.New(apperr.Unauthenticated, "unauthenticated"))
		return
	}

	resp, err := h.auth.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/postpilot-backend/internal/domain"
	"github.com/tazhibayda/postpilot-backend/internal/log"
	"github.com/tazhibayda/postpilot-backend/internal/metrics"
	"github.com/tazhibayda/postpilot-backend/internal/oauth"
	"github.com/tazhibayda/postpilot-backend/internal/payments"
	"github.com/tazhibayda/postpilot-backend/internal/queue"
	"github.com/tazhibayda/postpilot-backend/internal/repo"
	"github.com/tazhibayda/postpilot-backend/internal/security"
)

const sessionCookie = "token"

// UserStore is the credential-store surface the handlers need. *repo.Store
// implements it; tests use an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindUserByGoogleID(ctx context.Context, sub string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// GoogleVerifier is implemented by *oauth.GoogleOAuth.
type GoogleVerifier interface {
	MakeState(raw string) string
	VerifyState(got string) bool
	AuthURL(state string) string
	ExchangeAndVerify(ctx context.Context, code string) (*oauth.Profile, error)
}

type Handler struct {
	Store    UserStore
	Google   GoogleVerifier
	Checkout payments.CheckoutClient
	Events   queue.Publisher

	JWTSecret     string
	TokenTTL      time.Duration
	FrontendURL   string
	EventExchange string
	SecureCookies bool
}

func NewHandler(store UserStore, google GoogleVerifier, checkout payments.CheckoutClient,
	events queue.Publisher, jwtSecret string, ttlDays int, frontendURL, eventExchange string,
	secureCookies bool) *Handler {
	return &Handler{
		Store:         store,
		Google:        google,
		Checkout:      checkout,
		Events:        events,
		JWTSecret:     jwtSecret,
		TokenTTL:      time.Duration(ttlDays) * 24 * time.Hour,
		FrontendURL:   frontendURL,
		EventExchange: eventExchange,
		SecureCookies: secureCookies,
	}
}

func fail(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"success": false, "message": msg})
}

func (h *Handler) issueToken(u *domain.User) (string, error) {
	return security.MakeToken(h.JWTSecret, u.ID.Hex(), u.Email, u.Role, h.TokenTTL)
}

func (h *Handler) setSessionCookie(c *gin.Context, tok string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, tok, int(h.TokenTTL/time.Second), "/", "", h.SecureCookies, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.SecureCookies, true)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type signupReq struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Name            string `json:"name"`
}

// Signup godoc
// @Summary Create an account with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body signupReq true "signup"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var in signupReq
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Email, password, and name are required")
		return
	}
	if in.Email == "" || in.Password == "" || in.Name == "" {
		fail(c, http.StatusBadRequest, "Email, password, and name are required")
		return
	}
	if in.ConfirmPassword != "" && in.Password != in.ConfirmPassword {
		fail(c, http.StatusBadRequest, "Passwords do not match")
		return
	}

	email := normalizeEmail(in.Email)
	if u, _ := h.Store.FindUserByEmail(c.Request.Context(), email); u != nil {
		fail(c, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		log.L().Error("password hash", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error during signup")
		return
	}

	u := domain.NewUser(email, strings.TrimSpace(in.Name))
	u.Auth = domain.AuthInfo{
		Provider:      domain.ProviderEmail,
		PasswordHash:  hash,
		EmailVerified: false,
	}
	if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
		if err == repo.ErrEmailTaken {
			fail(c, http.StatusBadRequest, "Email already registered")
			return
		}
		log.L().Error("create user", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error during signup")
		return
	}

	tok, err := h.issueToken(u)
	if err != nil {
		log.L().Error("issue token", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error during signup")
		return
	}
	h.setSessionCookie(c, tok)

	metrics.SignupsTotal.WithLabelValues(domain.ProviderEmail).Inc()
	go h.Events.Publish(context.Background(), h.EventExchange, queue.KeyUserRegistered,
		queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name, Provider: u.Auth.Provider},
		c.GetString(requestIDKey))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully",
		"data": gin.H{
			"user": gin.H{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role},
		},
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Email == "" || in.Password == "" {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := h.Store.FindUserByEmail(c.Request.Context(), normalizeEmail(in.Email))
	if err != nil {
		log.L().Error("find user", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error during login")
		return
	}
	if u == nil {
		// same message as a wrong password: don't reveal account existence
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if u.Auth.Provider != domain.ProviderEmail || u.Auth.PasswordHash == "" {
		fail(c, http.StatusBadRequest, "Please login with Google")
		return
	}
	if !security.CheckPassword(u.Auth.PasswordHash, in.Password) {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	now := time.Now().UTC()
	if err := h.Store.TouchLastLogin(c.Request.Context(), u.ID, now); err != nil {
		log.L().Error("touch last_login", zap.Error(err))
	}
	u.LastLogin = &now

	tok, err := h.issueToken(u)
	if err != nil {
		log.L().Error("issue token", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error during login")
		return
	}
	h.setSessionCookie(c, tok)

	metrics.LoginsTotal.WithLabelValues(domain.ProviderEmail).Inc()
	go h.Events.Publish(context.Background(), h.EventExchange, queue.KeyUserLoggedIn,
		queue.UserLoggedIn{UserID: u.ID, Email: u.Email, Provider: u.Auth.Provider},
		c.GetString(requestIDKey))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"data": gin.H{
			"user": gin.H{
				"id": u.ID, "email": u.Email, "name": u.Name, "avatar": u.Avatar,
				"role": u.Role, "subscription": u.Subscription,
			},
		},
	})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	au, _ := c.Get(authUserKey)
	claims := au.(*security.Claims)

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	u, err := h.Store.FindUserByID(c.Request.Context(), id)
	if err != nil {
		log.L().Error("find user", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error")
		return
	}
	if u == nil {
		// identity deleted after the token was issued
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/auth/logout [delete]
func (h *Handler) Logout(c *gin.Context) {
	// stateless: the token itself stays valid until expiry
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// GoogleLogin redirects the browser to Google's consent screen.
func (h *Handler) GoogleLogin(c *gin.Context) {
	state := h.Google.MakeState(uuid.NewString())
	c.Redirect(http.StatusFound, h.Google.AuthURL(state))
}

func (h *Handler) redirectLoginError(c *gin.Context, code string) {
	// coarse error codes only; raw errors never reach the browser
	c.Redirect(http.StatusFound, h.FrontendURL+"/login?error="+code)
}

// GoogleCallback finishes the federated login. Matching by Google sub wins;
// an email collision with a password identity is rejected, never merged.
func (h *Handler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || !h.Google.VerifyState(state) {
		h.redirectLoginError(c, "google_auth_failed")
		return
	}

	profile, err := h.Google.ExchangeAndVerify(c.Request.Context(), code)
	if err != nil {
		log.L().Error("google exchange", zap.Error(err))
		h.redirectLoginError(c, "google_auth_failed")
		return
	}

	now := time.Now().UTC()
	reqID := c.GetString(requestIDKey)

	u, err := h.Store.FindUserByGoogleID(c.Request.Context(), profile.Sub)
	if err != nil {
		log.L().Error("find by google id", zap.Error(err))
		h.redirectLoginError(c, "google_auth_failed")
		return
	}

	if u == nil {
		existing, err := h.Store.FindUserByEmail(c.Request.Context(), normalizeEmail(profile.Email))
		if err != nil {
			log.L().Error("find by email", zap.Error(err))
			h.redirectLoginError(c, "google_auth_failed")
			return
		}
		if existing != nil {
			h.redirectLoginError(c, "provider_conflict")
			return
		}

		u = domain.NewUser(normalizeEmail(profile.Email), profile.Name)
		u.Avatar = profile.Picture
		u.Auth = domain.AuthInfo{
			Provider:      domain.ProviderGoogle,
			GoogleID:      profile.Sub,
			EmailVerified: true, // provider-asserted
		}
		u.LastLogin = &now
		if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
			if err == repo.ErrEmailTaken {
				h.redirectLoginError(c, "provider_conflict")
				return
			}
			log.L().Error("create google user", zap.Error(err))
			h.redirectLoginError(c, "google_auth_failed")
			return
		}
		metrics.SignupsTotal.WithLabelValues(domain.ProviderGoogle).Inc()
		go h.Events.Publish(context.Background(), h.EventExchange, queue.KeyUserRegistered,
			queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name, Provider: u.Auth.Provider},
			reqID)
	} else {
		if err := h.Store.TouchLastLogin(c.Request.Context(), u.ID, now); err != nil {
			log.L().Error("touch last_login", zap.Error(err))
		}
	}

	tok, err := h.issueToken(u)
	if err != nil {
		log.L().Error("issue token", zap.Error(err))
		h.redirectLoginError(c, "google_auth_failed")
		return
	}
	h.setSessionCookie(c, tok)

	metrics.LoginsTotal.WithLabelValues(domain.ProviderGoogle).Inc()
	go h.Events.Publish(context.Background(), h.EventExchange, queue.KeyUserLoggedIn,
		queue.UserLoggedIn{UserID: u.ID, Email: u.Email, Provider: domain.ProviderGoogle},
		reqID)

	c.Redirect(http.StatusFound, h.FrontendURL+"/auth/callback")
}

// CreateCheckout godoc
// @Summary Start a Pro Plan checkout session
// @Tags payments
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/payments/checkout [post]
func (h *Handler) CreateCheckout(c *gin.Context) {
	url, err := h.Checkout.CreateCheckoutSession(c.Request.Context())
	if err != nil {
		log.L().Error("stripe checkout", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Payment session creation failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}

// AdminListUsers godoc
// @Summary List all identities (admin only)
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Router /api/admin/users [get]
func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		log.L().Error("list users", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"users": users}})
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Package stubserver is a local stand-in for the remote SCEPTRE service.
// It implements the four endpoints the client consumes with deterministic
// verdicts, so the CLI and tests can run without the real backend.
package stubserver

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 30 * time.Minute

type account struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash []byte
}

// Server holds the in-memory account set and the JWT secret.
type Server struct {
	jwtSecret []byte

	mu       sync.Mutex
	accounts map[string]account
}

func New(jwtSecret []byte) *Server {
	return &Server{
		jwtSecret: jwtSecret,
		accounts:  make(map[string]account),
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery(), cors.Default())

	g.POST("/api/signup", s.signup)
	g.POST("/api/login", s.login)

	authed := g.Group("/", s.requireAuth)
	authed.POST("/verify", s.verify)
	authed.POST("/refresh-knowledge-base", s.refreshKnowledgeBase)

	return g
}

func (s *Server) signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"full_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "hash password"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		c.JSON(http.StatusConflict, gin.H{"err": "account already exists"})
		return
	}
	s.accounts[req.Email] = account{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
	}
	c.JSON(http.StatusOK, gin.H{"message": "user created"})
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "username and password required"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid credentials"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": acct.Email,
		"exp": time.Now().Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": signed,
		"user": gin.H{
			"email":     acct.Email,
			"full_name": acct.FullName,
			"id":        acct.ID,
		},
	})
}

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "missing bearer token"})
		return
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	_, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "invalid token"})
		return
	}
	c.Next()
}

func (s *Server) verify(c *gin.Context) {
	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "session_id required"})
		return
	}

	var content string
	switch {
	case c.PostForm("content") != "":
		content = c.PostForm("content")
	case c.PostForm("url") != "":
		content = c.PostForm("url")
	default:
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"err": "no content provided"})
			return
		}
		content = file.Filename
	}

	score := deterministicScore(content)
	sources := cannedSources(content)

	c.JSON(http.StatusOK, gin.H{
		"status":                 "success",
		"summary":                fmt.Sprintf("Stub analysis of %d characters of submitted content.", len(content)),
		"classification_score":   score,
		"classification_label":   label(score),
		"credibility_assessment": assess(score, len(sources)),
		"sources":                sources,
		"timestamp":              time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) refreshKnowledgeBase(c *gin.Context) {
	var req struct {
		Topic     string `json:"topic" binding:"required"`
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	count := int(xxhash.ChecksumString64(req.Topic)%8) + 1
	c.JSON(http.StatusOK, gin.H{
		"message":        fmt.Sprintf("Knowledge base refreshed with %d documents", count),
		"topic":          req.Topic,
		"document_count": count,
	})
}

// deterministicScore hashes the content into [0,1) so the same submission
// always gets the same verdict.
func deterministicScore(content string) float64 {
	return float64(xxhash.ChecksumString64(content)%1000) / 1000
}

func label(score float64) string {
	if score > 0.5 {
		return "fake"
	}
	return "real"
}

// assess applies the service's published scoring rules: the score picks the
// base band, the source count can downgrade it to unverifiable territory.
func assess(score float64, sourceCount int) string {
	if sourceCount == 0 {
		return "UNVERIFIABLE"
	}
	if sourceCount < 3 {
		return "LIMITED_VERIFICATION"
	}
	switch {
	case score > 0.7:
		return "HIGH_RISK"
	case score > 0.4:
		return "MODERATE_RISK"
	default:
		return "LOW_RISK"
	}
}

func cannedSources(content string) []gin.H {
	if strings.TrimSpace(content) == "" {
		return []gin.H{}
	}
	return []gin.H{
		{"title": "Reference A", "url": "https://example.org/a", "relevance_score": "0.92"},
		{"title": "Reference B", "url": "https://example.org/b", "relevance_score": "0.81"},
		{"title": "Reference C", "url": "https://example.org/c", "relevance_score": "0.64"},
	}
}

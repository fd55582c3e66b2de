// Package server implements the self-hosted sync backend: a PostgREST-style
// REST surface over Postgres, scoped per user, plus a minimal password-grant
// token endpoint. It serves exactly the contract the CLI's table client
// speaks.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colecta/colecta-cli/internal/server/storage"
)

const contextUserID = "userID"

var (
	categoryColumns = map[string]bool{
		"id": true, "name": true, "icon": true, "user_id": true, "order_index": true,
	}
	itemColumns = map[string]bool{
		"id": true, "title": true, "category_id": true, "rating": true,
		"image_url": true, "description": true, "user_id": true, "created_at": true,
	}

	categoryUpdatable = map[string]bool{
		"name": true, "icon": true, "order_index": true,
	}
	itemUpdatable = map[string]bool{
		"title": true, "category_id": true, "rating": true,
		"image_url": true, "description": true, "metadata": true,
	}
)

// Server wires the router, database and configuration together.
type Server struct {
	db  *gorm.DB
	cfg *Config
}

// New creates a server over an opened database.
func New(db *gorm.DB, cfg *Config) *Server {
	return &Server{db: db, cfg: cfg}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := r.Group("/auth/v1", s.requireAPIKey())
	{
		authGroup.POST("/signup", s.handleSignup)
		authGroup.POST("/token", s.handleToken)
	}

	restGroup := r.Group("/rest/v1", s.requireAPIKey(), s.requireUser())
	{
		restGroup.GET("/categories", s.listCategories)
		restGroup.POST("/categories", s.createCategory)
		restGroup.PATCH("/categories", s.updateCategories)
		restGroup.DELETE("/categories", s.deleteCategories)

		restGroup.GET("/items", s.listItems)
		restGroup.POST("/items", s.createItem)
		restGroup.PATCH("/items", s.updateItems)
		restGroup.DELETE("/items", s.deleteItems)
	}

	return r
}

// requestLogger logs one line per request via slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

type credentialsInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// sessionResponse matches the session shape the CLI stores.
type sessionResponse struct {
	AccessToken string      `json:"access_token"`
	User        sessionUser `json:"user"`
}

type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create account"})
		return
	}

	user := storage.User{Email: input.Email, PasswordHash: hash}
	if err := s.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
		return
	}

	s.respondSession(c, http.StatusCreated, &user)
}

func (s *Server) handleToken(c *gin.Context) {
	if c.Query("grant_type") != "password" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unsupported grant_type"})
		return
	}

	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var user storage.User
	if err := s.db.First(&user, "email = ?", input.Email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}
	if !checkPassword(user.PasswordHash, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}

	s.respondSession(c, http.StatusOK, &user)
}

func (s *Server) respondSession(c *gin.Context, status int, user *storage.User) {
	token, err := s.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to issue token"})
		return
	}
	c.JSON(status, sessionResponse{
		AccessToken: token,
		User:        sessionUser{ID: user.ID.String(), Email: user.Email},
	})
}

func currentUser(c *gin.Context) uuid.UUID {
	return c.MustGet(contextUserID).(uuid.UUID)
}

// scoped builds the base query for a table, restricted to the caller's rows
// plus any parsed filters and ordering.
func (s *Server) scoped(c *gin.Context, q *ListQuery) *gorm.DB {
	tx := s.db.Where("user_id = ?", currentUser(c))
	for column, value := range q.Filters {
		if column == "user_id" {
			continue // already scoped; a client cannot widen it
		}
		tx = tx.Where(column+" = ?", value)
	}
	if clause := q.OrderClause(); clause != "" {
		tx = tx.Order(clause)
	}
	return tx
}

func (s *Server) listCategories(c *gin.Context) {
	q, err := ParseListQuery(c.Request.URL.Query(), categoryColumns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	categories := []storage.Category{}
	if err := s.scoped(c, q).Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) createCategory(c *gin.Context) {
	var category storage.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	category.ID = uuid.Nil
	category.UserID = currentUser(c)

	if err := s.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, []storage.Category{category})
}

func (s *Server) updateCategories(c *gin.Context) {
	q, err := ParseListQuery(c.Request.URL.Query(), categoryColumns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updates, ok := bindUpdates(c, categoryUpdatable)
	if !ok {
		return
	}

	if err := s.scoped(c, q).Model(&storage.Category{}).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update categories"})
		return
	}

	categories := []storage.Category{}
	if err := s.scoped(c, q).Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load updated categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) deleteCategories(c *gin.Context) {
	q, err := ParseListQuery(c.Request.URL.Query(), categoryColumns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if len(q.Filters) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "refusing unfiltered delete"})
		return
	}

	if err := s.scoped(c, q).Delete(&storage.Category{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete categories"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listItems(c *gin.Context) {
	q, err := ParseListQuery(c.Request.URL.Query(), itemColumns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	items := []storage.Item{}
	if err := s.scoped(c, q).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) createItem(c *gin.Context) {
	var item storage.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	item.ID = uuid.Nil
	item.UserID = currentUser(c)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create item"})
		return
	}
	c.JSON(http.StatusCreated, []storage.Item{item})
}

func (s *Server) updateItems(c *gin.Context) {
	q, err := ParseListQuery(c.Request.URL.Query(), itemColumns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updates, ok := bindUpdates(c, itemUpdatable)
	if !ok {
		return
	}

	if err := s.scoped(c, q).Model(&storage.Item{}).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update items"})
		return
	}

	items := []storage.Item{}
	if err := s.scoped(c, q).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load updated items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) deleteItems(c *gin.Context) {
	q, err := ParseListQuery(c.Request.URL.Query(), itemColumns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if len(q.Filters) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "refusing unfiltered delete"})
		return
	}

	if err := s.scoped(c, q).Delete(&storage.Item{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete items"})
		return
	}
	c.Status(http.StatusNoContent)
}

// bindUpdates reads the PATCH body and drops any column outside the
// updatable set. Ownership and creation fields can never be patched.
func bindUpdates(c *gin.Context, updatable map[string]bool) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return nil, false
	}

	updates := make(map[string]any, len(body))
	for column, value := range body {
		if updatable[column] {
			updates[column] = value
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no updatable fields in request"})
		return nil, false
	}
	return updates, true
}

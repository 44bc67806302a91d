package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"
)

// currentUser loads the authenticated user from the user_id claim set
// by the auth middleware.
func currentUser(c *gin.Context) (models.User, error) {
	userID := uint(c.MustGet("user_id").(float64))
	var user models.User
	err := config.DB.First(&user, userID).Error
	return user, err
}

// parseIDParam parses a numeric URL parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// isUniqueViolation reports whether err is a duplicate-key error, either
// from Postgres (23505) or from GORM's portable translation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite (test database) reports constraint failures textually.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// searchPattern builds a case-insensitive LIKE pattern.
func searchPattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

// sumDecimal evaluates SUM(column) over the given query, treating an
// empty set as zero.
func sumDecimal(q *gorm.DB, column string) decimal.Decimal {
	var total decimal.Decimal
	row := q.Select("COALESCE(SUM(" + column + "), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero
	}
	return total
}

package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"
)

// canManageRole encodes the user-management matrix: admins manage every
// role, staff admins only staff admins and treasurers.
func canManageRole(actorRole, targetRole string) bool {
	switch actorRole {
	case models.RoleAdmin:
		return targetRole == models.RoleAdmin ||
			targetRole == models.RoleStaffAdmin ||
			targetRole == models.RoleTreasurer
	case models.RoleStaffAdmin:
		return targetRole == models.RoleStaffAdmin || targetRole == models.RoleTreasurer
	}
	return false
}

// ListUsers returns the manageable user list plus per-role counts.
func ListUsers(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	query := config.DB.Where("id <> ?", actor.ID).Order("username")
	if actor.Role == models.RoleStaffAdmin {
		query = query.Where("role IN ?", []string{models.RoleStaffAdmin, models.RoleTreasurer})
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing users: " + err.Error()})
		return
	}

	counts := gin.H{"admin": 0, "staff_admin": 0, "treasurer": 0}
	for _, u := range users {
		if n, ok := counts[u.Role].(int); ok {
			counts[u.Role] = n + 1
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": users, "role_counts": counts})
}

type createUserInput struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role" binding:"required"`
}

// CreateUser creates a back-office account. Staff admins cannot create
// admin accounts.
func CreateUser(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var input createUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role != models.RoleAdmin && role != models.RoleStaffAdmin && role != models.RoleTreasurer {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	if !canManageRole(actor.Role, role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot create accounts with this role"})
		return
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := models.User{
		Username:  input.Username,
		Password:  hashed,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Role:      role,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type updateUserInput struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	Password  *string `json:"password"`
}

// UpdateUser edits another account. Self-edits are rejected and staff
// admins cannot touch admin accounts.
func UpdateUser(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot edit your own account from this page"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}
	if !canManageRole(actor.Role, user.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: you cannot edit this account"})
		return
	}

	var input updateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*input.Role))
		if !canManageRole(actor.Role, role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You cannot assign this role"})
			return
		}
		user.Role = role
	}
	if input.Password != nil && *input.Password != "" {
		hashed, hashErr := hashPassword(*input.Password)
		if hashErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}
		user.Password = hashed
	}

	if err := config.DB.Save(&user).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

// DeleteUser removes an account. Admin only; self-deletion is refused.
func DeleteUser(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete your own account"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := config.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User '" + user.Username + "' deleted successfully"})
}

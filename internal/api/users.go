package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"hunter-market/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenLifetime = 30 * 24 * time.Hour

type registerRequest struct {
	Username      string `json:"username" binding:"required"`
	Nickname      string `json:"nickname" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	PhoneNumber   string `json:"phone_number"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	OpenChatLink  string `json:"open_chat_link"`
	Major         string `json:"major"`
	Grade         int    `json:"grade"`
}

// Register: POST /api/v1/users/register
func (h *APIHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalError(c, err)
		return
	}

	user := models.User{
		Username:      req.Username,
		Nickname:      req.Nickname,
		Email:         req.Email,
		Password:      string(hashed),
		PhoneNumber:   req.PhoneNumber,
		MannerScore:   4.3,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		OpenChatLink:  req.OpenChatLink,
		Major:         req.Major,
		Grade:         req.Grade,
	}
	if user.Grade <= 0 {
		user.Grade = 1
	}

	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "이미 등록된 이메일입니다."})
			return
		}
		h.internalError(c, err)
		return
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login: POST /api/v1/users/login
func (h *APIHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "이메일과 비밀번호를 입력해주세요."})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "이메일 또는 비밀번호가 올바르지 않습니다."})
			return
		}
		h.internalError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "이메일 또는 비밀번호가 올바르지 않습니다."})
		return
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
}

// Me: GET /api/v1/users/me
func (h *APIHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "user": currentUser(c)})
}

func (h *APIHandler) signToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// Protect validates the bearer token and loads the user into the context.
func (h *APIHandler) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "인증이 필요합니다."})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "유효하지 않은 토큰입니다."})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "유효하지 않은 토큰입니다."})
			return
		}
		idValue, ok := claims["id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "유효하지 않은 토큰입니다."})
			return
		}

		var user models.User
		if err := h.db.First(&user, uint(idValue)).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "유효하지 않은 토큰입니다."})
			return
		}

		c.Set("user", &user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get("user"); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return &models.User{}
}

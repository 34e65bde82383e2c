package service

import (
	"context"
	"errors"
	"time"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Servicio de autenticación propio: emite y valida los JWT de usuarios y
// admins, y maneja registro/login con bcrypt.

var (
	ErrEmailTaken         = errors.New("el email ya está registrado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrInvalidToken       = errors.New("token inválido o expirado")
)

const tokenTTL = 7 * 24 * time.Hour

// Claims lleva exactamente uno de UserID o AdminID según quién sea el
// principal autenticado.
type Claims struct {
	UserID  string `json:"userId,omitempty"`
	AdminID string `json:"adminId,omitempty"`
	jwt.RegisteredClaims
}

// Principal es lo que el middleware deja en el contexto por request.
type Principal struct {
	UserID  primitive.ObjectID
	AdminID primitive.ObjectID
	IsAdmin bool
}

type AuthService struct {
	users  UserRepository
	admins AdminRepository
	secret []byte
}

func NewAuthService(users UserRepository, admins AdminRepository, secret string) *AuthService {
	return &AuthService{users: users, admins: admins, secret: []byte(secret)}
}

func (a *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, string, error) {
	if _, err := a.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		SavedAddress: []model.Address{},
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := a.signToken(Claims{UserID: user.ID.Hex()})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.signToken(Claims{UserID: user.ID.Hex()})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (a *AuthService) AdminLogin(ctx context.Context, email, password string) (*model.Admin, string, error) {
	admin, err := a.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.signToken(Claims{AdminID: admin.ID.Hex()})
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

// AddAddress agrega una dirección a la libreta del usuario. Las órdenes ya
// creadas no se ven afectadas: llevan su propia copia.
func (a *AuthService) AddAddress(ctx context.Context, userID primitive.ObjectID, req dto.AddAddressRequest) (*model.User, error) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.SavedAddress = append(user.SavedAddress, model.Address{
		ID:      primitive.NewObjectID(),
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
	})
	if err := a.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateToken parsea y valida un bearer token y devuelve el principal.
func (a *AuthService) ValidateToken(tokenString string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	switch {
	case claims.AdminID != "":
		id, err := primitive.ObjectIDFromHex(claims.AdminID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		return &Principal{AdminID: id, IsAdmin: true}, nil
	case claims.UserID != "":
		id, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		return &Principal{UserID: id}, nil
	}
	return nil, ErrInvalidToken
}

func (a *AuthService) signToken(claims Claims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

package service

import (
	"errors"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo     domain.UserRepository
	settingsRepo domain.SettingsRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, settingsRepo domain.SettingsRepository) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	IsNewUser bool
}

// AuthenticateUser handles the authentication flow after Auth0 callback.
// Creates the user and a zeroed settings row on first login.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	_, err = s.settingsRepo.GetByUser(user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			if _, err := s.settingsRepo.Upsert(&domain.Settings{UserID: user.ID}); err != nil {
				log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create default settings")
				return nil, err
			}
			log.Info().Str("user_id", user.ID.String()).Msg("Created new user with default settings")
			return &AuthResult{User: user, IsNewUser: true}, nil
		}
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to get settings")
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Existing user authenticated")
	return &AuthResult{User: user, IsNewUser: false}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

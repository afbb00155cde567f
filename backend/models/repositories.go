package models

import (
	"github.com/hobbyline/cardbinder/internal/database/repositories"
)

// Repositories groups all repository interfaces for easy injection
type Repositories struct {
	User       repositories.UserRepository
	Card       repositories.CardRepository
	Collection repositories.CollectionRepository
}

// NewRepositories creates a new repositories group from individual repositories
func NewRepositories(
	user repositories.UserRepository,
	card repositories.CardRepository,
	collection repositories.CollectionRepository,
) *Repositories {
	return &Repositories{
		User:       user,
		Card:       card,
		Collection: collection,
	}
}

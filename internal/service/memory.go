package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
)

var ErrMemoryTextRequired = errors.New("memory text is required")

type MemoryService struct {
	repo  repository.MemoryRepository
	limit int
}

func NewMemoryService(repo repository.MemoryRepository, limit int) *MemoryService {
	return &MemoryService{repo: repo, limit: limit}
}

// Add stores a memory for the user, evicting the oldest entries once the
// per-user cap is reached. Unknown types fall back to general.
func (s *MemoryService) Add(userID, text, memType string) (*model.Memory, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrMemoryTextRequired
	}
	if !model.ValidMemoryType(memType) {
		memType = model.MemoryTypeGeneral
	}

	count, err := s.repo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	for ; count >= s.limit; count-- {
		err = s.repo.DeleteOldest(userID)
		if err != nil {
			return nil, err
		}
	}

	memory := &model.Memory{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      strings.TrimSpace(text),
		Type:      memType,
		CreatedAt: time.Now(),
	}
	err = s.repo.Create(memory)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory: %w", err)
	}

	return memory, nil
}

func (s *MemoryService) Recent(userID string, limit int) ([]*model.Memory, error) {
	return s.repo.ByUser(userID, limit)
}

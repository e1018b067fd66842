package service

import (
	"strings"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
)

// TagService 标签服务
type TagService struct {
	tagRepo repository.TagRepository
}

// NewTagService 创建标签服务
func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// normalizeTagName 标签名统一小写去空白
func normalizeTagName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || len(name) > constants.MaxTagNameLen {
		return "", ErrTagNameInvalid
	}
	return name, nil
}

// Create 创建标签（可挂在父标签下）
func (s *TagService) Create(name string, parentID *uint) (*models.Tag, error) {
	normalized, err := normalizeTagName(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.tagRepo.GetByName(normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTagNameTaken
	}

	if parentID != nil {
		parent, err := s.tagRepo.GetByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrTagNotFound
		}
	}

	tag := &models.Tag{Name: normalized, ParentID: parentID}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// UpdateTagInput 更新标签输入
type UpdateTagInput struct {
	Name     *string
	ParentID *uint
	// ClearParent 为 true 时将标签提升为顶级
	ClearParent bool
}

// Update 更新标签（父子关系变更会做环检测）
func (s *TagService) Update(id uint, input UpdateTagInput) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, ErrTagNotFound
	}

	if input.Name != nil {
		normalized, err := normalizeTagName(*input.Name)
		if err != nil {
			return nil, err
		}
		if normalized != tag.Name {
			existing, err := s.tagRepo.GetByName(normalized)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != tag.ID {
				return nil, ErrTagNameTaken
			}
			tag.Name = normalized
		}
	}

	if input.ClearParent {
		tag.ParentID = nil
	} else if input.ParentID != nil {
		if *input.ParentID == tag.ID {
			return nil, ErrTagCycleDetected
		}
		parent, err := s.tagRepo.GetByID(*input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrTagNotFound
		}
		if err := s.checkCycle(tag.ID, parent); err != nil {
			return nil, err
		}
		tag.ParentID = input.ParentID
	}

	if err := s.tagRepo.Update(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// checkCycle 沿父链向上查找，防止形成环
func (s *TagService) checkCycle(tagID uint, parent *models.Tag) error {
	seen := map[uint]bool{tagID: true}
	current := parent
	for current != nil {
		if seen[current.ID] {
			return ErrTagCycleDetected
		}
		seen[current.ID] = true
		if current.ParentID == nil {
			return nil
		}
		next, err := s.tagRepo.GetByID(*current.ParentID)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

// Get 获取标签
func (s *TagService) Get(id uint) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, ErrTagNotFound
	}
	return tag, nil
}

// List 获取全部标签
func (s *TagService) List() ([]models.Tag, error) {
	return s.tagRepo.List()
}

// ListChildren 获取子标签
func (s *TagService) ListChildren(parentID uint) ([]models.Tag, error) {
	return s.tagRepo.ListChildren(parentID)
}

// Delete 删除标签（仍有商品绑定或存在子标签时拒绝）
func (s *TagService) Delete(id uint) error {
	tag, err := s.tagRepo.GetByID(id)
	if err != nil {
		return err
	}
	if tag == nil {
		return ErrTagNotFound
	}

	count, err := s.tagRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrTagHasProducts
	}
	children, err := s.tagRepo.ListChildren(id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return ErrTagHasProducts
	}
	return s.tagRepo.Delete(id)
}

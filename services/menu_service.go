package services

import (
	"context"
	"strings"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type MenuItemInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    *string         `json:"category"`
	ImageURL    *string         `json:"image_url"`
	IsAvailable *bool           `json:"is_available"`
}

type MenuItemPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	ImageURL    *string          `json:"image_url"`
	IsAvailable *bool            `json:"is_available"`
}

type MenuService struct {
	DB *gorm.DB
}

func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{DB: db}
}

func (s *MenuService) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.DB.WithContext(ctx).Order("category ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, dbError(err, "list menu items")
	}
	return items, nil
}

func (s *MenuService) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, dbError(err, "menu item "+id.String())
	}
	return &item, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuItemInput, actor Actor) (*models.MenuItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := requireText("name", in.Name, 255); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if err := validateCategory(in.Category); err != nil {
		return nil, err
	}

	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	item := models.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       models.NewMoney(in.Price),
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		IsAvailable: available,
	}

	// a false is_available is dropped on insert in favour of the column default
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return dbError(err, "create menu item")
		}
		if !available {
			item.IsAvailable = false
			return dbError(tx.Model(&item).Update("is_available", false).Error, "create menu item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"menu_item_id": item.ID,
		"name":         item.Name,
		"price":        item.Price.StringFixed(2),
	}).Info("menu item created")
	return &item, nil
}

func (s *MenuService) Update(ctx context.Context, id uuid.UUID, patch MenuItemPatch, actor Actor) (*models.MenuItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if patch.Name != nil {
		if err := requireText("name", *patch.Name, 255); err != nil {
			return nil, err
		}
		changes["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		changes["price"] = patch.Price.Round(2)
	}
	if patch.Category != nil {
		if err := validateCategory(patch.Category); err != nil {
			return nil, err
		}
		changes["category"] = *patch.Category
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		changes["image_url"] = *patch.ImageURL
	}
	if patch.IsAvailable != nil {
		changes["is_available"] = *patch.IsAvailable
	}
	if len(changes) == 0 {
		return nil, validationf("no fields to update")
	}

	var item models.MenuItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return dbError(err, "menu item "+id.String())
		}
		if err := tx.Model(&models.MenuItem{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return dbError(err, "update menu item")
		}
		return dbError(tx.Where("id = ?", id).First(&item).Error, "reload menu item")
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithField("menu_item_id", id).Info("menu item updated")
	return &item, nil
}

// Delete removes a menu item that no order item references.
func (s *MenuService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return dbError(err, "menu item "+id.String())
		}

		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&refs).Error; err != nil {
			return dbError(err, "count menu item references")
		}
		if refs > 0 {
			return conflictf("menu item %q is referenced by %d order item(s)", item.Name, refs)
		}

		if err := tx.Where("id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
			return dbError(err, "delete menu item")
		}
		utils.InfoLogger.WithField("menu_item_id", id).Info("menu item deleted")
		return nil
	})
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return validationf("price must be greater than or equal to 0")
	}
	if p.GreaterThanOrEqual(maxAmount) {
		return validationf("price is too large")
	}
	return nil
}

func validateCategory(c *string) error {
	if c != nil && len(*c) > 100 {
		return validationf("category must be at most 100 characters")
	}
	return nil
}

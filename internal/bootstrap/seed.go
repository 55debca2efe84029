package bootstrap

import (
	"log"

	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
)

// Seed creates the starter categories on a fresh database. An instance
// that already has categories is left alone so admin edits survive
// restarts.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []entity.Category{
		{
			Name:        "General",
			Description: "General discussion about building your site",
			Icon:        "chat-bubble-left-right",
			Color:       "blue",
			IsActive:    true,
		},
		{
			Name:        "Announcements",
			Description: "Platform news and release notes",
			Icon:        "megaphone",
			Color:       "purple",
			IsActive:    true,
		},
		{
			Name:        "Support",
			Description: "Questions and troubleshooting",
			Icon:        "lifebuoy",
			Color:       "green",
			IsActive:    true,
		},
		{
			Name:        "Showcase",
			Description: "Show off what you built",
			Icon:        "sparkles",
			Color:       "orange",
			IsActive:    true,
		},
	}

	if err := db.Create(&defaults).Error; err != nil {
		return err
	}

	log.Printf("seeded %d default categories", len(defaults))
	return nil
}

package models

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Experience struct {
	gorm.Model
	PublicID uuid.UUID `json:"publicID" gorm:"type:uuid;uniqueIndex;not null"`

	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`

	IsActive bool `json:"isActive" gorm:"default:true;index"`

	// Assets render in Position order (insertion order by default).
	Assets []Asset `json:"assets" gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE"`
}

func (e *Experience) BeforeCreate(tx *gorm.DB) error {
	if e.PublicID == uuid.Nil {
		e.PublicID = uuid.New()
	}
	if e.Slug == "" {
		e.Slug = Slugify(e.Title)
	}
	return nil
}

// Slugify derives a URL slug from a title: lowercase, ascii letters and
// digits kept, Spanish accents folded, anything else collapsed to hyphens.
func Slugify(title string) string {
	folded := strings.NewReplacer(
		"á", "a", "à", "a", "ä", "a",
		"é", "e", "è", "e", "ë", "e",
		"í", "i", "ï", "i",
		"ó", "o", "ö", "o",
		"ú", "u", "ü", "u",
		"ñ", "n",
	).Replace(strings.ToLower(title))

	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

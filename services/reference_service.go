package services

import (
	"errors"
	"regexp"
	"strings"

	"assettrack-backend/models"

	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify normalizes a person name into a storage key: lowercase with
// runs of non-alphanumerics collapsed to single hyphens.
func slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// ReferenceService resolves natural-key strings (type, brand, person) into
// stable row ids, creating the row when absent. Every method takes the
// caller's transaction handle so a resolution failure rolls the whole
// mutation back.
//
// The racy check-then-insert is backed by a unique index on each natural
// key column. Inserts run in a nested transaction, which GORM executes as
// a SAVEPOINT inside a caller transaction: a constraint failure rolls back
// to the savepoint instead of aborting the whole transaction, and the key
// is re-queried.
type ReferenceService struct{}

// NewReferenceService creates the resolver.
func NewReferenceService() *ReferenceService {
	return &ReferenceService{}
}

// ResolveType maps a type name to an asset_types id, inserting on miss.
// Blank input yields a nil id, not an error.
func (s *ReferenceService) ResolveType(tx *gorm.DB, name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var assetType models.AssetType
	err := tx.Where("type_name = ?", name).First(&assetType).Error
	if err == nil {
		return &assetType.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ReferenceResolutionError{Kind: "type", Key: name, Err: err}
	}

	assetType = models.AssetType{TypeName: name}
	createErr := tx.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&assetType).Error
	})
	if createErr != nil {
		// A concurrent insert may have taken the unique index; re-query.
		if requeryErr := tx.Where("type_name = ?", name).First(&assetType).Error; requeryErr != nil {
			return nil, &ReferenceResolutionError{Kind: "type", Key: name, Err: createErr}
		}
	}
	return &assetType.ID, nil
}

// ResolveBrand maps a brand name to an asset_brands id, inserting on miss.
func (s *ReferenceService) ResolveBrand(tx *gorm.DB, name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var brand models.AssetBrand
	err := tx.Where("brand_name = ?", name).First(&brand).Error
	if err == nil {
		return &brand.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ReferenceResolutionError{Kind: "brand", Key: name, Err: err}
	}

	brand = models.AssetBrand{BrandName: name}
	createErr := tx.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&brand).Error
	})
	if createErr != nil {
		if requeryErr := tx.Where("brand_name = ?", name).First(&brand).Error; requeryErr != nil {
			return nil, &ReferenceResolutionError{Kind: "brand", Key: name, Err: createErr}
		}
	}
	return &brand.ID, nil
}

// ResolveUser maps a person name to a users id, inserting on miss.
//
// Lookup order: exact full name, then username, then email, then the
// slugified form of the name. A new row stores the slug as username and
// the raw trimmed name as full name, so both later lookup styles find the
// same row.
func (s *ReferenceService) ResolveUser(tx *gorm.DB, name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	slug := slugify(name)

	var user models.User
	err := tx.Where("full_name = ? OR username = ? OR email = ? OR username = ?",
		name, name, name, slug).Order("id ASC").First(&user).Error
	if err == nil {
		return &user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ReferenceResolutionError{Kind: "person", Key: name, Err: err}
	}

	user = models.User{Username: slug, FullName: name}
	createErr := tx.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if createErr != nil {
		if requeryErr := tx.Where("username = ?", slug).First(&user).Error; requeryErr != nil {
			return nil, &ReferenceResolutionError{Kind: "person", Key: name, Err: createErr}
		}
	}
	return &user.ID, nil
}

package catalogsvc

import (
	"time"

	"github.com/sumaro2101/EasyLibrary/model"
)

// Gutenberg printed the first book in 1456; no catalog entry predates it.
const minYear = 1456

func currentYear() int { return time.Now().Year() }

// validateBook runs the whole rule chain and reports every violation,
// not just the first.
func (s *service) validateBook(b *model.Book) error {
	violations := map[string]string{}

	if b.Name == "" {
		violations["name"] = "must not be empty"
	}
	if !b.AgeRestriction.Valid() {
		violations["age_restriction"] = "must be one of 0, 6, 12, 16, 18"
	}
	if b.CountPages <= 0 {
		violations["count_pages"] = "must be positive"
	}
	if b.Quantity < 1 {
		violations["quantity"] = "at least one copy must be on the shelf"
	}

	checkYear(b, s.now(), violations)
	checkPublished(b, violations)
	checkVolume(b, violations)

	if len(violations) > 0 {
		return codedError{code: ErrValidation, fields: violations}
	}
	return nil
}

func checkYear(b *model.Book, year int, violations map[string]string) {
	if b.YearPublished <= minYear {
		violations["year_published"] = "must be greater than 1456"
		return
	}
	if b.IsPublished && b.YearPublished > year {
		violations["year_published"] = "a published book cannot be dated in the future"
	}
}

func checkPublished(b *model.Book, violations map[string]string) {
	if b.IsPublished {
		if b.Circulation == 0 {
			violations["circulation"] = "a published book must have a print run"
		}
		return
	}
	if b.Circulation != 0 || b.BestSeller {
		violations["circulation"] = "an unpublished book cannot have a print run or be a best seller"
	}
}

func checkVolume(b *model.Book, violations map[string]string) {
	if (b.VolumeID == nil) != (b.NumOfVolume == nil) {
		violations["volume"] = "volume and position must be set together"
		return
	}
	if b.NumOfVolume != nil && *b.NumOfVolume <= 0 {
		violations["num_of_volume"] = "position within a volume must be positive"
	}
}

// model/book.go
package model

// AgeRestriction is the age badge printed on the cover: 0+, 6+, 12+, 16+, 18+.
type AgeRestriction int

const (
	Age0  AgeRestriction = 0
	Age6  AgeRestriction = 6
	Age12 AgeRestriction = 12
	Age16 AgeRestriction = 16
	Age18 AgeRestriction = 18
)

func (a AgeRestriction) Valid() bool {
	switch a {
	case Age0, Age6, Age12, Age16, Age18:
		return true
	}
	return false
}

// LoanDays is the loan period the restriction implies; adult titles get
// the long period.
func (a AgeRestriction) LoanDays() int {
	if a == Age18 {
		return 30
	}
	return 14
}

type Author struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Surname   *string `json:"surname,omitempty"`
}

type Publisher struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	URL     string `json:"url"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type Volume struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Genre struct {
	ID     int64  `json:"id"`
	NameEN string `json:"name_en"`
	NameRU string `json:"name_ru"`
}

type Book struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	PublisherID    int64          `json:"publisher_id"`
	BestSeller     bool           `json:"best_seller"`
	VolumeID       *int64         `json:"volume_id,omitempty"`
	NumOfVolume    *int           `json:"num_of_volume,omitempty"`
	AgeRestriction AgeRestriction `json:"age_restriction"`
	CountPages     int            `json:"count_pages"`
	YearPublished  int            `json:"year_published"`
	Circulation    int            `json:"circulation"`
	Quantity       int            `json:"quantity"`
	IsPublished    bool           `json:"is_published"`
	AuthorIDs      []int64        `json:"author_ids,omitempty"`
	GenreIDs       []int64        `json:"genre_ids,omitempty"`
}

// BookDetail embeds related catalog names for display.
type BookDetail struct {
	Book
	Publisher string   `json:"publisher"`
	Volume    *string  `json:"volume,omitempty"`
	Authors   []string `json:"authors"`
	Genres    []string `json:"genres"`
}

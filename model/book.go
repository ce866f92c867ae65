// model/book.go
package model

type Author struct {
	Name           string `json:"name"`
	Bio            string `json:"bio,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

type Review struct {
	Reviewer string `json:"reviewer"`
	Comment  string `json:"comment"`
	Rating   int    `json:"rating"`
}

type Book struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Author        Author   `json:"author"`
	ISBN          string   `json:"isbn,omitempty"`
	Genre         []string `json:"genre"`
	Language      string   `json:"language"`
	PublishedYear int      `json:"published_year"`
	CoverImage    string   `json:"cover_image"`
	Description   string   `json:"description"`
	TotalPages    int      `json:"total_pages"`
	Rating        float64  `json:"rating"`
	Reviews       []Review `json:"reviews,omitempty"`
	Price         float64  `json:"price"`
	RentPrice     float64  `json:"rentPrice"`
	Availability  bool     `json:"availability"`
	Category      []string `json:"category"`
}

// CreateBookReq carries everything but the id, which the store allocates.
// swagger:model CreateBookReq
type CreateBookReq struct {
	Title         string   `json:"title" validate:"required"`
	Author        Author   `json:"author"`
	ISBN          string   `json:"isbn"`
	Genre         []string `json:"genre"`
	Language      string   `json:"language"`
	PublishedYear int      `json:"published_year"`
	CoverImage    string   `json:"cover_image"`
	Description   string   `json:"description"`
	TotalPages    int      `json:"total_pages" validate:"gte=0"`
	Rating        float64  `json:"rating" validate:"gte=0,lte=5"`
	Price         float64  `json:"price" validate:"gte=0"`
	RentPrice     float64  `json:"rentPrice" validate:"gte=0"`
	Availability  bool     `json:"availability"`
	Category      []string `json:"category"`
}

func (r CreateBookReq) Book() Book {
	return Book{
		Title:         r.Title,
		Author:        r.Author,
		ISBN:          r.ISBN,
		Genre:         r.Genre,
		Language:      r.Language,
		PublishedYear: r.PublishedYear,
		CoverImage:    r.CoverImage,
		Description:   r.Description,
		TotalPages:    r.TotalPages,
		Rating:        r.Rating,
		Price:         r.Price,
		RentPrice:     r.RentPrice,
		Availability:  r.Availability,
		Category:      r.Category,
	}
}

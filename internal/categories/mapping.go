package categories

import (
	"github.com/JaimeStill/lostfound/pkg/query"
	"github.com/JaimeStill/lostfound/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "categories", "c").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "Name"}

func scanCategory(s repository.Scanner) (Category, error) {
	var c Category
	err := s.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	return c, err
}

package blogservice

import (
	"strings"

	"github.com/changyic/bloglist/internal/common"
)

func validateBlog(v *common.Validator, title, author, url string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(author != "", "author", "must be provided")
	v.Check(url != "", "url", "must be provided")
}

func validateComment(v *common.Validator, comment string) {
	v.Check(strings.TrimSpace(comment) != "", "comment", "content is missing or invalid")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}

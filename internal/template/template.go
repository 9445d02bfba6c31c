// Package template holds the fixed starter texts offered by the editor.
package template

import (
	"net/http"

	"inkwell/pkg/apperror"
	"inkwell/pkg/response"
)

type Name string

const (
	Empty     Name = "empty"
	Contract  Name = "contract"
	Agreement Name = "agreement"
	Resume    Name = "resume"
)

type Template struct {
	Name Name   `json:"name"`
	Text string `json:"text"`
}

// table is ordered the way templates are listed.
var table = []Template{
	{Name: Empty, Text: ""},
	{Name: Contract, Text: "This contract is made between [Party A] and [Party B]."},
	{Name: Agreement, Text: "This agreement sets forth the terms between [Party A] and [Party B]."},
	{Name: Resume, Text: "Name: [Your Name]\nSkills: [Your Skills]\nExperience: [Your Experience]"},
}

func All() []Template {
	out := make([]Template, len(table))
	copy(out, table)
	return out
}

func Lookup(name Name) (Template, error) {
	for _, t := range table {
		if t.Name == name {
			return t, nil
		}
	}
	return Template{}, apperror.Missing("Template not found")
}

// Handler serves GET /api/templates.
func Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	response.JSON(w, http.StatusOK, All())
}

package shared

import (
	"github.com/go-playground/form"
)

var (
	Decoder = form.NewDecoder()
	Encoder = form.NewEncoder()
)

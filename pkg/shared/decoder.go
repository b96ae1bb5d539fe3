package shared

import (
	"github.com/go-playground/form"
)

// Decoder decodes url.Values (query strings and form bodies) into DTO structs.
var Decoder = form.NewDecoder()

package crud

import (
	"net/url"

	"github.com/go-faster/errors"

	"github.com/iota-uz/org-console/pkg/shared"
)

// DecodeDraft builds a draft from posted form values. Keys follow the draft's `form` tags.
func DecodeDraft[D any](values url.Values) (D, error) {
	var draft D
	if err := shared.Decoder.Decode(&draft, values); err != nil {
		return draft, errors.Wrap(err, "decode draft")
	}
	return draft, nil
}

func EncodeDraft(draft any) (url.Values, error) {
	values, err := shared.Encoder.Encode(draft)
	if err != nil {
		return nil, errors.Wrap(err, "encode draft")
	}
	return values, nil
}
